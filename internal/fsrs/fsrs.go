// Package fsrs computes the next schedule of a repetition unit after a review.
// Units only store what it returns; nothing here touches the database.
package fsrs

import (
	"math"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Params holds the parameters for the scheduler.
type Params struct {
	A                float64 // scales the overall memory increase
	B                float64 // difficulty exponent
	C                float64 // stability exponent
	D                float64 // retention effect scaler
	DesiredRetention float64 // desired retention rate (e.g., 0.9 for 90%)

	// InitialStability is the stability in days given to a New unit on its first
	// review, indexed by grade-1.
	InitialStability [4]float64
	// LearningStep is how long a unit waits after Again, or after Hard while learning.
	LearningStep time.Duration
	EasyBonus    float64
}

// DefaultParams provides a set of sensible default parameters to start with.
func DefaultParams() *Params {
	return &Params{
		A:                0.2,
		B:                0.5,
		C:                0.1,
		D:                4.0,
		DesiredRetention: 0.9,
		InitialStability: [4]float64{0.4, 1.2, 3.2, 7.9},
		LearningStep:     10 * time.Minute,
		EasyBonus:        1.3,
	}
}

// Scheduler applies Params to units.
type Scheduler struct {
	params *Params
}

// NewScheduler returns a Scheduler. A nil p uses DefaultParams.
func NewScheduler(p *Params) *Scheduler {
	if p == nil {
		p = DefaultParams()
	}
	return &Scheduler{params: p}
}

func grade(r domain.Rating) int {
	switch r {
	case domain.RatingAgain:
		return 1
	case domain.RatingHard:
		return 2
	case domain.RatingEasy:
		return 4
	default:
		return 3
	}
}

// Next returns u as it should be stored after being reviewed with rating at now.
// Identity fields are kept; every scheduling field is recomputed.
func (s *Scheduler) Next(u domain.RepetitionUnit, rating domain.Rating, now time.Time) domain.RepetitionUnit {
	p := s.params
	g := grade(rating)

	next := u
	next.Reps++
	next.LastReview = now
	next.ElapsedDays = 0
	if u.State != domain.StateNew {
		next.ElapsedDays = max(0, int(now.Sub(u.LastReview).Hours()/24))
	}

	if u.State == domain.StateNew {
		next.Stability = p.InitialStability[g-1]
		next.Difficulty = initialDifficulty(g)
	} else {
		next.Difficulty = nextDifficulty(u.Difficulty, g)
	}

	switch {
	case rating == domain.RatingAgain:
		if u.State == domain.StateReview {
			next.Lapses++
			next.State = domain.StateRelearning
			next.Stability = 1
		} else if u.State == domain.StateNew {
			next.State = domain.StateLearning
		}
		next.ScheduledDays = 0
		next.Due = now.Add(p.LearningStep)

	case rating == domain.RatingHard && u.State != domain.StateReview:
		if u.State == domain.StateNew {
			next.State = domain.StateLearning
		}
		next.ScheduledDays = 0
		next.Due = now.Add(2 * p.LearningStep)

	default:
		if u.State != domain.StateNew {
			next.Stability = p.calculateNewStability(u.Stability, u.Difficulty)
		}
		if rating == domain.RatingEasy {
			next.Stability *= p.EasyBonus
		}
		next.State = domain.StateReview
		next.ScheduledDays = intervalDays(next.Stability)
		next.Due = now.AddDate(0, 0, next.ScheduledDays)
	}
	return next
}

func initialDifficulty(g int) float64 {
	return clampDifficulty(5 - 1.5*float64(g-3))
}

// nextDifficulty moves difficulty up for Again and Hard, down for Easy.
func nextDifficulty(d float64, g int) float64 {
	switch g {
	case 1:
		return clampDifficulty(d + 0.5)
	case 2:
		return clampDifficulty(d + 0.1)
	case 4:
		return clampDifficulty(d - 0.3)
	}
	return d
}

func clampDifficulty(d float64) float64 {
	return math.Min(10, math.Max(1, d))
}

// calculateNewStability applies the core formula for a successful review.
func (p *Params) calculateNewStability(stability, difficulty float64) float64 {
	// Formula: S' = S * (1 + a * D^(-b) * S^c * (e^(d * (1-R)) - 1))
	if stability < 1 {
		stability = 1 // keep pow well behaved
	}
	if difficulty < 1 {
		difficulty = 1
	}

	factor := p.A * math.Pow(difficulty, -p.B) * math.Pow(stability, p.C)
	exponent := p.D * (1 - p.DesiredRetention)
	multiplier := math.Exp(exponent) - 1

	return stability * (1 + factor*multiplier)
}

// intervalDays rounds stability to whole days, never less than one.
func intervalDays(stability float64) int {
	return max(1, int(math.Round(stability)))
}
