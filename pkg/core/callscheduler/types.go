package callscheduler

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Defaults applied when the corresponding Config field is left zero
const (
	DefaultTrials               = 10000
	DefaultTimeBudget           = 5 * time.Minute
	DefaultFairnessWeight       = 0.75
	DefaultSoftConstraintWeight = 0.25
)

var (
	// ErrInfeasible is returned when no trial fills every date of the block
	ErrInfeasible = errors.New("no feasible schedule found")

	// ErrInvalidInput wraps every fatal input inconsistency
	ErrInvalidInput = errors.New("invalid scheduling input")
)

// InfeasibleError reports a run in which every trial failed
type InfeasibleError struct {
	Block           model.DateRange
	TrialsAttempted int

	// FailureDates are the dates on which trials most often failed, most frequent first
	FailureDates []DateFailureCount
}

// DateFailureCount is the number of trials that failed on a date
type DateFailureCount struct {
	Date  time.Time
	Count int
}

func (e *InfeasibleError) Error() string {
	parts := make([]string, 0, len(e.FailureDates))
	for _, f := range e.FailureDates {
		parts = append(parts, fmt.Sprintf("%s (%d)", f.Date.Format(model.DateLayout), f.Count))
	}
	msg := fmt.Sprintf("%s for block %s after %d trials", ErrInfeasible, e.Block, e.TrialsAttempted)
	if len(parts) > 0 {
		msg += "; most frequent failure dates: " + strings.Join(parts, ", ")
	}
	return msg
}

func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasible
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Config contains everything needed for one scheduling run
type Config struct {
	// Residents is the roster. Names must be unique.
	Residents []model.Resident

	// Leave requests are hard exclusions for every role
	Leave []model.LeaveRequest

	// SoftConstraints are preferences not to work; violations are scored, not forbidden
	SoftConstraints []model.SoftConstraint

	// Holidays are fixed call/backup pairs inside the block
	Holidays []model.FixedAssignment

	// PreviousTail holds the fixed assignments for the days preceding the block
	PreviousTail []model.FixedAssignment

	// BlockStart and BlockEnd bound the scheduled range (inclusive)
	BlockStart time.Time
	BlockEnd   time.Time

	// PGY4Cap is the maximum number of calls a PGY-4 may take within the block
	PGY4Cap int

	// PreviousCounts are carried-in call counts by resident name, used only for fairness scoring
	PreviousCounts map[string]model.CallCounts

	// FairnessWeight and SoftConstraintWeight combine the normalised trial metrics. They must sum to 1.
	FairnessWeight       float64
	SoftConstraintWeight float64

	// Trials is the number of independent attempts to run
	Trials int

	// Workers is the number of trials run concurrently
	Workers int

	// TimeBudget caps the wall-clock time spent running trials
	TimeBudget time.Duration

	// Seed makes the run reproducible. Zero picks a time-based seed.
	Seed uint64

	Logger *zap.Logger
}

// TrialScore is the raw and combined score of a completed trial
type TrialScore struct {
	Index      int
	Fairness   float64
	Violations int
	Combined   float64
}

// Result is the outcome of a scheduling run
type Result struct {
	Rows            []model.ScheduleRow
	SoftConstraints model.SoftConstraintStats

	// Counts are the block's call counts by resident name, excluding carried-in counts
	Counts map[string]model.CallCounts

	Best            TrialScore
	Seed            uint64
	TrialsAttempted int
	TrialsSucceeded int

	// ValidationErrors lists any rule the final schedule breaks. Expected to be empty.
	ValidationErrors []ValidationError
}

func topFailureDates(failures map[time.Time]int, limit int) []DateFailureCount {
	out := make([]DateFailureCount, 0, len(failures))
	for date, count := range failures {
		out = append(out, DateFailureCount{Date: date, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Date.Before(out[j].Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
