package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/exchange"
	"github.com/conorfennell/knoldeck/internal/testutil"
	"github.com/conorfennell/knoldeck/internal/web"
	"github.com/conorfennell/knoldeck/internal/web/mocks"
)

type harness struct {
	files    *mocks.MockStore
	cells    *mocks.MockSequencer
	units    *mocks.MockLifecycle
	exchange *mocks.MockExchanger
	settings *mocks.MockSettingsManager
	clock    *testutil.StubClock
	server   *web.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		files:    mocks.NewMockStore(ctrl),
		cells:    mocks.NewMockSequencer(ctrl),
		units:    mocks.NewMockLifecycle(ctrl),
		exchange: mocks.NewMockExchanger(ctrl),
		settings: mocks.NewMockSettingsManager(ctrl),
		clock:    testutil.FixedClock(),
	}
	h.server = web.NewServer(h.deps())
	return h
}

func (h *harness) deps() web.Deps {
	return web.Deps{
		Files:    h.files,
		Cells:    h.cells,
		Units:    h.units,
		Exchange: h.exchange,
		Settings: h.settings,
		Clock:    h.clock,
	}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.server.ServeHTTP(w, r)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %q", w.Body.String())
	}
	return body.Error
}

func TestRoutes(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"unknown route", http.MethodGet, "/api/nothing", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/files", http.StatusMethodNotAllowed},
		{"bad id", http.MethodDelete, "/api/files/abc", http.StatusBadRequest},
		{"negative id", http.MethodDelete, "/api/cells/-4", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(tt.method, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestListFiles(t *testing.T) {
	h := newHarness(t)
	h.files.EXPECT().List(gomock.Any()).Return([]domain.FileNode{
		{ID: 1, Path: "lang", IsFolder: true},
		{ID: 2, Path: "lang/go"},
		{ID: 3, Path: "lang/rust"},
	}, nil)
	h.units.EXPECT().StudyCountsByFile(gomock.Any()).Return(map[int64]domain.StudyCounts{
		2: {New: 3, Review: 1},
	}, nil)

	w := h.do(http.MethodGet, "/api/files", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id header")
	}

	var got []domain.FileWithCounts
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d nodes, want 3", len(got))
	}
	if got[0].RepetitionCounts != nil {
		t.Error("folder carries repetition counts")
	}
	if got[1].RepetitionCounts == nil || *got[1].RepetitionCounts != (domain.StudyCounts{New: 3, Review: 1}) {
		t.Errorf("lang/go counts = %+v", got[1].RepetitionCounts)
	}
	if got[2].RepetitionCounts == nil || got[2].RepetitionCounts.Total() != 0 {
		t.Errorf("lang/rust counts = %+v, want zero counts", got[2].RepetitionCounts)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", domain.EmptyName("path"), http.StatusBadRequest, "name cannot be empty"},
		{"conflict", domain.AlreadyExists("file", "a/b"), http.StatusConflict, "file already exists: a/b"},
		{"not found", domain.NotFound("folder", 9), http.StatusNotFound, "folder 9 not found"},
		{"persistence", domain.Persistence("create file", context.DeadlineExceeded), http.StatusInternalServerError, "create file: context deadline exceeded"},
		{"outside the domain", errors.New("disk on fire"), http.StatusInternalServerError, "disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.files.EXPECT().CreateFile(gomock.Any(), "a/b").Return(int64(0), tt.err)

			w := h.do(http.MethodPost, "/api/files", `{"path":"a/b"}`)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if msg := errorBody(t, w); msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestHierarchyHandlers(t *testing.T) {
	t.Run("create folder", func(t *testing.T) {
		h := newHarness(t)
		h.files.EXPECT().CreateFolder(gomock.Any(), "a/b").Return(int64(4), nil)
		w := h.do(http.MethodPost, "/api/folders", `{"path":"a/b"}`)
		if w.Code != http.StatusCreated || strings.TrimSpace(w.Body.String()) != `{"id":4}` {
			t.Errorf("response = %d %s", w.Code, w.Body)
		}
	})

	t.Run("move to root", func(t *testing.T) {
		h := newHarness(t)
		h.files.EXPECT().MoveFolder(gomock.Any(), int64(3), domain.RootFolderID).Return(nil)
		w := h.do(http.MethodPost, "/api/folders/3/move", `{"destinationFolderId":0}`)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("move into itself", func(t *testing.T) {
		h := newHarness(t)
		h.files.EXPECT().MoveFolder(gomock.Any(), int64(3), int64(3)).Return(domain.InvalidMove())
		w := h.do(http.MethodPost, "/api/folders/3/move", `{"destinationFolderId":3}`)
		if w.Code != http.StatusConflict || errorBody(t, w) != "cannot move into an inner folder" {
			t.Errorf("response = %d %s", w.Code, w.Body)
		}
	})

	t.Run("move without destination", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(http.MethodPost, "/api/files/3/move", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("rename file", func(t *testing.T) {
		h := newHarness(t)
		h.files.EXPECT().RenameFile(gomock.Any(), int64(2), "new").Return(nil)
		w := h.do(http.MethodPost, "/api/files/2/rename", `{"newName":"new"}`)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("delete folder", func(t *testing.T) {
		h := newHarness(t)
		h.files.EXPECT().DeleteFolder(gomock.Any(), int64(7)).Return(nil)
		if w := h.do(http.MethodDelete, "/api/folders/7", ""); w.Code != http.StatusNoContent {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(http.MethodPost, "/api/files", `{"path":"a","extra":1}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestCellHandlers(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		h := newHarness(t)
		h.cells.EXPECT().CreateCell(gomock.Any(), int64(2), "hello", domain.CellNote, 0).Return(int64(11), nil)
		w := h.do(http.MethodPost, "/api/cells", `{"fileId":2,"content":"hello","cellType":"Note","index":0}`)
		if w.Code != http.StatusCreated || strings.TrimSpace(w.Body.String()) != `{"id":11}` {
			t.Errorf("response = %d %s", w.Code, w.Body)
		}
	})

	t.Run("create without index", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(http.MethodPost, "/api/cells", `{"fileId":2,"content":"hello","cellType":"Note"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("list empty file", func(t *testing.T) {
		h := newHarness(t)
		h.cells.EXPECT().ListOrdered(gomock.Any(), int64(2)).Return(nil, nil)
		w := h.do(http.MethodGet, "/api/files/2/cells", "")
		if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `[]` {
			t.Errorf("response = %d %s", w.Code, w.Body)
		}
	})

	t.Run("move", func(t *testing.T) {
		h := newHarness(t)
		h.cells.EXPECT().MoveCell(gomock.Any(), int64(5), 3).Return(nil)
		if w := h.do(http.MethodPost, "/api/cells/5/move", `{"newIndex":3}`); w.Code != http.StatusNoContent {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("batch update", func(t *testing.T) {
		h := newHarness(t)
		h.cells.EXPECT().UpdateCellsContents(gomock.Any(), []domain.CellContentUpdate{{ID: 1, Content: "a"}, {ID: 2, Content: "b"}}).Return(nil)
		w := h.do(http.MethodPut, "/api/cells/contents", `{"updates":[{"id":1,"content":"a"},{"id":2,"content":"b"}]}`)
		if w.Code != http.StatusNoContent {
			t.Errorf("status = %d, body %s", w.Code, w.Body)
		}
	})

	t.Run("batch update rejects zero id", func(t *testing.T) {
		h := newHarness(t)
		w := h.do(http.MethodPut, "/api/cells/contents", `{"updates":[{"id":0,"content":"a"}]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("reset units", func(t *testing.T) {
		h := newHarness(t)
		h.units.EXPECT().ResetUnitsForCell(gomock.Any(), int64(5)).Return(nil)
		if w := h.do(http.MethodPost, "/api/cells/5/reset", ""); w.Code != http.StatusNoContent {
			t.Errorf("status = %d", w.Code)
		}
	})
}

func TestGrade(t *testing.T) {
	h := newHarness(t)
	now := h.clock.Now()
	unit := domain.NewUnit(2, 9, nil, now.Add(-time.Hour))
	unit.ID = 40

	h.units.EXPECT().GetUnit(gomock.Any(), int64(40)).Return(unit, nil)
	h.units.EXPECT().RegisterReview(gomock.Any(), gomock.Any(), domain.RatingGood, int64(12)).
		DoAndReturn(func(_ context.Context, u domain.RepetitionUnit, _ domain.Rating, _ int64) error {
			if u.ID != 40 || u.State != domain.StateReview || !u.LastReview.Equal(now) || !u.Due.After(now) {
				t.Errorf("registered unit = %+v", u)
			}
			return nil
		})

	w := h.do(http.MethodPost, "/api/units/40/grade", `{"rating":"Good","studyTime":12}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	var got domain.RepetitionUnit
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.Reps != 1 || got.State != domain.StateReview {
		t.Errorf("response unit = %+v", got)
	}

	t.Run("unknown rating", func(t *testing.T) {
		w := h.do(http.MethodPost, "/api/units/40/grade", `{"rating":"Meh"}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestRegisterReview(t *testing.T) {
	h := newHarness(t)
	h.units.EXPECT().RegisterReview(gomock.Any(), gomock.Any(), domain.RatingHard, int64(7)).
		DoAndReturn(func(_ context.Context, u domain.RepetitionUnit, _ domain.Rating, _ int64) error {
			if u.ID != 3 || u.Stability != 2.5 || u.State != domain.StateLearning {
				t.Errorf("unit = %+v", u)
			}
			return nil
		})

	body := `{"unit":{"id":3,"fileId":1,"cellId":2,"additionalContent":null,"due":"2024-01-16T10:30:00Z",
		"stability":2.5,"difficulty":5,"elapsedDays":0,"scheduledDays":1,"reps":1,"lapses":0,
		"state":"Learning","lastReview":"2024-01-15T10:30:00Z"},"rating":"Hard","studyTime":7}`
	if w := h.do(http.MethodPost, "/api/reviews", body); w.Code != http.StatusNoContent {
		t.Errorf("status = %d, body %s", w.Code, w.Body)
	}
}

func TestStatistics(t *testing.T) {
	h := newHarness(t)
	h.units.EXPECT().HomeStatistics(gomock.Any(), 7).Return(domain.HomeStatistics{}, nil)
	h.units.EXPECT().TodayStatistics(gomock.Any()).Return(domain.ReviewStatistics{Count: 2, StudyTime: 30}, nil)

	if w := h.do(http.MethodGet, "/api/statistics/home?days=7", ""); w.Code != http.StatusOK {
		t.Errorf("home status = %d", w.Code)
	}
	w := h.do(http.MethodGet, "/api/statistics/today", "")
	if strings.TrimSpace(w.Body.String()) != `{"count":2,"studyTime":30}` {
		t.Errorf("today body = %s", w.Body)
	}
	for _, q := range []string{"0", "367", "x"} {
		if w := h.do(http.MethodGet, "/api/statistics/home?days="+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("days=%s status = %d, want 400", q, w.Code)
		}
	}
}

func TestExchangeHandlers(t *testing.T) {
	item := exchange.ExportedItem{Path: "deck", ItemType: exchange.ItemFile, Cells: []exchange.ExportedCell{
		{Content: "<p>x</p>", CellType: domain.CellNote},
	}}

	t.Run("export", func(t *testing.T) {
		h := newHarness(t)
		h.exchange.EXPECT().Export(gomock.Any(), int64(4)).Return(item, nil)
		w := h.do(http.MethodGet, "/api/export/4", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		got, err := exchange.Decode(w.Body, "")
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got.Path != "deck" || len(got.Cells) != 1 {
			t.Errorf("exported = %+v", got)
		}
	})

	t.Run("import", func(t *testing.T) {
		h := newHarness(t)
		h.exchange.EXPECT().Import(gomock.Any(), item, int64(5)).Return(int64(12), nil)

		var buf bytes.Buffer
		if err := exchange.Encode(&buf, item, ""); err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		w := h.do(http.MethodPost, "/api/import?destination=5", buf.String())
		if w.Code != http.StatusCreated || strings.TrimSpace(w.Body.String()) != `{"id":12}` {
			t.Errorf("response = %d %s", w.Code, w.Body)
		}
	})

	t.Run("import garbage", func(t *testing.T) {
		h := newHarness(t)
		if w := h.do(http.MethodPost, "/api/import", "not json"); w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestPutSettingsSwapsServices(t *testing.T) {
	h := newHarness(t)
	ctrl := gomock.NewController(t)
	nextFiles := mocks.NewMockStore(ctrl)
	nextUnits := mocks.NewMockLifecycle(ctrl)
	nextSettings := mocks.NewMockSettingsManager(ctrl)

	want := web.Settings{Theme: "Dark", DatabasePath: "other.db"}
	h.settings.EXPECT().Apply(gomock.Any(), want).Return(web.Deps{
		Files:    nextFiles,
		Cells:    h.cells,
		Units:    nextUnits,
		Exchange: h.exchange,
		Settings: nextSettings,
	}, nil)
	nextSettings.EXPECT().Current().Return(want).AnyTimes()

	w := h.do(http.MethodPut, "/api/settings", `{"theme":"Dark","databasePath":"other.db"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}

	nextFiles.EXPECT().List(gomock.Any()).Return(nil, nil)
	nextUnits.EXPECT().StudyCountsByFile(gomock.Any()).Return(nil, nil)
	if w := h.do(http.MethodGet, "/api/files", ""); w.Code != http.StatusOK {
		t.Errorf("status after swap = %d", w.Code)
	}

	if w := h.do(http.MethodPut, "/api/settings", `{"theme":"Neon","databasePath":"x.db"}`); w.Code != http.StatusBadRequest {
		t.Errorf("invalid theme status = %d, want 400", w.Code)
	}
}

func TestRequestsAreSerialized(t *testing.T) {
	h := newHarness(t)
	var inflight, peak atomic.Int32
	h.files.EXPECT().List(gomock.Any()).DoAndReturn(func(context.Context) ([]domain.FileNode, error) {
		n := inflight.Add(1)
		defer inflight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		return nil, nil
	}).Times(8)
	h.units.EXPECT().StudyCountsByFile(gomock.Any()).Return(nil, nil).Times(8)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.do(http.MethodGet, "/api/files", "")
		}()
	}
	wg.Wait()

	if peak.Load() != 1 {
		t.Errorf("peak concurrent operations = %d, want 1", peak.Load())
	}
}
