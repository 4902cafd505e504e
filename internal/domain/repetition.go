package domain

import "time"

// State is the scheduling phase of a repetition unit.
type State string

const (
	StateNew        State = "New"
	StateLearning   State = "Learning"
	StateRelearning State = "Relearning"
	StateReview     State = "Review"
)

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StateNew, StateLearning, StateRelearning, StateReview:
		return true
	}
	return false
}

// RepetitionUnit is one scheduling record for a cell, or for one cloze blank of a cell.
// AdditionalContent holds the cloze index and is nil for every other cell type.
type RepetitionUnit struct {
	ID                int64     `json:"id"`
	FileID            int64     `json:"fileId"`
	CellID            int64     `json:"cellId"`
	AdditionalContent *string   `json:"additionalContent"`
	Due               time.Time `json:"due"`
	Stability         float64   `json:"stability"`
	Difficulty        float64   `json:"difficulty"`
	ElapsedDays       int       `json:"elapsedDays"`
	ScheduledDays     int       `json:"scheduledDays"`
	Reps              int       `json:"reps"`
	Lapses            int       `json:"lapses"`
	State             State     `json:"state"`
	LastReview        time.Time `json:"lastReview"`
}

// NewUnit returns a fresh unit in the New state, due immediately.
func NewUnit(fileID, cellID int64, additionalContent *string, now time.Time) RepetitionUnit {
	return RepetitionUnit{
		FileID:            fileID,
		CellID:            cellID,
		AdditionalContent: additionalContent,
		Due:               now,
		State:             StateNew,
		LastReview:        now,
	}
}

// Key identifies the unit within its cell: the cloze index, or "" for single-unit cells.
func (u RepetitionUnit) Key() string {
	if u.AdditionalContent == nil {
		return ""
	}
	return *u.AdditionalContent
}

// StudyCounts are due units for a file grouped by state.
type StudyCounts struct {
	New        int `json:"new"`
	Learning   int `json:"learning"`
	Relearning int `json:"relearning"`
	Review     int `json:"review"`
}

// Add increments the bucket for state by n. Unknown states are ignored.
func (c *StudyCounts) Add(state State, n int) {
	switch state {
	case StateNew:
		c.New += n
	case StateLearning:
		c.Learning += n
	case StateRelearning:
		c.Relearning += n
	case StateReview:
		c.Review += n
	}
}

// Total is the number of due units across all states.
func (c StudyCounts) Total() int {
	return c.New + c.Learning + c.Relearning + c.Review
}
