package domain

import (
	"fmt"
	"time"
)

// Rating is the user's response to a review.
type Rating string

const (
	RatingAgain Rating = "Again"
	RatingHard  Rating = "Hard"
	RatingGood  Rating = "Good"
	RatingEasy  Rating = "Easy"
)

// ParseRating validates a rating received from a caller.
func ParseRating(s string) (Rating, error) {
	switch r := Rating(s); r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return r, nil
	}
	return "", &ValidationError{Field: "rating", Message: fmt.Sprintf("unknown rating %q", s)}
}

// ReviewLogEntry records a single review. Entries are append-only.
type ReviewLogEntry struct {
	ID        int64     `json:"id"`
	CellID    int64     `json:"cellId"`
	StudyTime int64     `json:"studyTime"`
	Date      time.Time `json:"date"`
	Rating    Rating    `json:"rating"`
}

// ReviewStatistics summarizes the reviews done in a period.
type ReviewStatistics struct {
	Count     int   `json:"count"`
	StudyTime int64 `json:"studyTime"`
}

// DayCount is a count bucketed by calendar day (YYYY-MM-DD, UTC).
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HomeStatistics backs the dashboard: reviews done per past day and units due per upcoming day.
type HomeStatistics struct {
	ReviewCounts []DayCount `json:"reviewCounts"`
	DueCounts    []DayCount `json:"dueCounts"`
}
