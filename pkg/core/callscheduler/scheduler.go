package callscheduler

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// failureDatesReported limits the failure dates included in an InfeasibleError
const failureDatesReported = 5

type trialOutcome struct {
	ran      bool
	ok       bool
	failedOn time.Time
	score    TrialScore
}

// Generate runs independent randomised trials over the block and returns the best complete
// schedule with supervisors assigned. It returns an *InfeasibleError if no trial completes
// and an error wrapping ErrInvalidInput for unusable input.
func Generate(ctx context.Context, cfg Config) (*Result, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Step 1: Validate and index the input
	p, err := newProblem(cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Trials < 0 {
		return nil, invalidInput("trial count must not be negative, got %d", cfg.Trials)
	}
	trials := cmp.Or(cfg.Trials, DefaultTrials)
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	budget := cmp.Or(cfg.TimeBudget, DefaultTimeBudget)
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	logger.Info("Generating schedule",
		zap.String("block", p.block.String()),
		zap.Int("residents", p.roster.size()),
		zap.Int("holidays", len(p.fixed)),
		zap.Int("trials", trials),
		zap.Int("workers", workers),
		zap.Uint64("seed", seed))

	// Step 2: Run the trials
	start := time.Now()
	outcomes, err := runTrials(ctx, p, seed, trials, workers, budget, logger)
	if err != nil {
		return nil, err
	}

	// Step 3: Collect scores of the trials that completed
	var (
		scores   []TrialScore
		attempts int
		failures = make(map[time.Time]int)
	)
	for _, o := range outcomes {
		if !o.ran {
			continue
		}
		attempts++
		if o.ok {
			scores = append(scores, o.score)
		} else {
			failures[o.failedOn]++
		}
	}

	logger.Debug("Trials finished",
		zap.Int("attempted", attempts),
		zap.Int("succeeded", len(scores)),
		zap.Duration("elapsed", time.Since(start)))

	// Step 4: Select the best trial
	best, ok := selectBest(scores, p.fairnessWeight, p.softWeight)
	if !ok {
		return nil, &InfeasibleError{
			Block:           p.block,
			TrialsAttempted: attempts,
			FailureDates:    topFailureDates(failures, failureDatesReported),
		}
	}

	// Step 5: Rebuild the winning trial. Trials are deterministic in (seed, index), so only
	// scores were kept while running.
	winner := newTrial(p, best.Index, trialRNG(seed, best.Index))
	if failedOn, ok := winner.run(); !ok {
		return nil, fmt.Errorf("failed to replay trial %d: failed on %s", best.Index, failedOn.Format(model.DateLayout))
	}

	// Step 6: Supervisor pass and output rows
	supervisors := assignSupervisors(p, winner.assignments, logger)
	rows := make([]model.ScheduleRow, len(winner.assignments))
	for i, a := range winner.assignments {
		rows[i] = model.ScheduleRow{
			Date:       a.date,
			Call:       p.roster.name(a.call),
			Backup:     p.roster.name(a.backup),
			Intern:     p.roster.name(a.intern),
			Supervisor: p.roster.name(supervisors[i]),
			Fixed:      a.fixed,
		}
	}

	counts := make(map[string]model.CallCounts, p.roster.size())
	for id, c := range winner.counts {
		counts[p.roster.name(residentID(id))] = c
	}

	// Step 7: Check the result against the hard rules
	validationErrors := ValidateSchedule(rows, ValidationInput{
		Residents:    cfg.Residents,
		Leave:        cfg.Leave,
		PreviousTail: cfg.PreviousTail,
		PGY4Cap:      cfg.PGY4Cap,
	})
	for _, ve := range validationErrors {
		logger.Warn("Schedule validation error", zap.String("error", ve.Error()))
	}

	result := &Result{
		Rows:             rows,
		SoftConstraints:  softStats(rows, p.softPrefsByName()),
		Counts:           counts,
		Best:             best,
		Seed:             seed,
		TrialsAttempted:  attempts,
		TrialsSucceeded:  len(scores),
		ValidationErrors: validationErrors,
	}

	logger.Info("Schedule generated",
		zap.Int("winningTrial", best.Index),
		zap.Float64("fairness", best.Fairness),
		zap.Int("violations", best.Violations),
		zap.Int("successfulTrials", len(scores)))

	return result, nil
}

// runTrials runs trials on a bounded pool of workers until all have run or the budget
// expires. Each trial owns its state and random stream.
func runTrials(ctx context.Context, p *problem, seed uint64, trials, workers int, budget time.Duration, logger *zap.Logger) ([]trialOutcome, error) {
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	outcomes := make([]trialOutcome, trials)
	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(workers)

	for i := range trials {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			t := newTrial(p, i, trialRNG(seed, i))
			failedOn, ok := t.run()
			outcomes[i] = trialOutcome{ran: true, ok: ok, failedOn: failedOn}
			if ok {
				outcomes[i].score = TrialScore{
					Index:      i,
					Fairness:   fairnessSpread(p, t.counts),
					Violations: t.violations,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to run trials: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("schedule generation cancelled: %w", err)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("Time budget exhausted before all trials ran", zap.Duration("budget", budget))
	}

	return outcomes, nil
}
