package callscheduler

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

type dateSet map[time.Time]struct{}

func (s dateSet) has(date time.Time) bool {
	_, ok := s[date]
	return ok
}

type fixedPair struct {
	call   residentID
	backup residentID
}

// problem is the validated, immutable input shared by every trial of a run
type problem struct {
	roster  *roster
	block   model.DateRange
	days    []time.Time
	pgy4Cap int

	// fixed holds the in-block holiday assignments keyed by date
	fixed map[time.Time]fixedPair

	// seedCalls and seedBackups are the fixed assignments (tail and holidays) every trial
	// starts its spacing logs with, indexed by resident
	seedCalls   [][]time.Time
	seedBackups [][]time.Time

	// previousCall is the resident on call for each tail date, used by the supervisor pass
	previousCall map[time.Time]residentID

	leave    []dateSet
	soft     []dateSet
	previous []model.CallCounts

	fairnessWeight float64
	softWeight     float64
}

func newProblem(cfg Config, logger *zap.Logger) (*problem, error) {
	start, end := model.Day(cfg.BlockStart), model.Day(cfg.BlockEnd)
	if start.IsZero() || end.IsZero() {
		return nil, invalidInput("block start and end are required")
	}
	if end.Before(start) {
		return nil, invalidInput("block end %s is before start %s", end.Format(model.DateLayout), start.Format(model.DateLayout))
	}
	if cfg.PGY4Cap < 1 {
		return nil, invalidInput("PGY-4 call cap must be at least 1, got %d", cfg.PGY4Cap)
	}

	fw, sw := cfg.FairnessWeight, cfg.SoftConstraintWeight
	if fw == 0 && sw == 0 {
		fw, sw = DefaultFairnessWeight, DefaultSoftConstraintWeight
	}
	if fw < 0 || sw < 0 || math.Abs(fw+sw-1) > 1e-9 {
		return nil, invalidInput("fairness and soft-constraint weights must be non-negative and sum to 1, got %v and %v", fw, sw)
	}

	r, err := newRoster(cfg.Residents)
	if err != nil {
		return nil, err
	}

	block := model.DateRange{Start: start, End: end}
	n := r.size()
	p := &problem{
		roster:         r,
		block:          block,
		days:           block.Days(),
		pgy4Cap:        cfg.PGY4Cap,
		fixed:          make(map[time.Time]fixedPair),
		seedCalls:      make([][]time.Time, n),
		seedBackups:    make([][]time.Time, n),
		previousCall:   make(map[time.Time]residentID),
		leave:          make([]dateSet, n),
		soft:           make([]dateSet, n),
		previous:       make([]model.CallCounts, n),
		fairnessWeight: fw,
		softWeight:     sw,
	}
	for i := range n {
		p.leave[i] = dateSet{}
		p.soft[i] = dateSet{}
	}

	for _, h := range cfg.Holidays {
		date := model.Day(h.Date)
		if !block.Contains(date) {
			logger.Warn("Ignoring holiday outside block", zap.String("date", date.Format(model.DateLayout)))
			continue
		}
		call, okCall := r.lookup(h.Call)
		backup, okBackup := r.lookup(h.Backup)
		if !okCall || !okBackup {
			return nil, invalidInput("holiday %s names a resident not on the roster (%q, %q)", date.Format(model.DateLayout), h.Call, h.Backup)
		}
		if call == backup {
			return nil, invalidInput("holiday %s has %q as both call and backup", date.Format(model.DateLayout), h.Call)
		}
		if _, dup := p.fixed[date]; dup {
			return nil, invalidInput("holiday %s is listed more than once", date.Format(model.DateLayout))
		}
		p.fixed[date] = fixedPair{call: call, backup: backup}
		p.seedCalls[call] = append(p.seedCalls[call], date)
		p.seedBackups[backup] = append(p.seedBackups[backup], date)
	}

	for _, t := range cfg.PreviousTail {
		date := model.Day(t.Date)
		if !date.Before(start) {
			logger.Warn("Ignoring previous-block assignment not before block start", zap.String("date", date.Format(model.DateLayout)))
			continue
		}
		if call, ok := r.lookup(t.Call); ok {
			p.seedCalls[call] = append(p.seedCalls[call], date)
			p.previousCall[date] = call
		} else {
			logger.Warn("Previous-block call resident not on roster", zap.String("date", date.Format(model.DateLayout)), zap.String("resident", t.Call))
		}
		if backup, ok := r.lookup(t.Backup); ok {
			p.seedBackups[backup] = append(p.seedBackups[backup], date)
		} else {
			logger.Warn("Previous-block backup resident not on roster", zap.String("date", date.Format(model.DateLayout)), zap.String("resident", t.Backup))
		}
	}

	for _, l := range cfg.Leave {
		addDates(p.leave, r, l.Resident, l.Dates, block, "leave", logger)
	}
	for _, s := range cfg.SoftConstraints {
		addDates(p.soft, r, s.Resident, s.Dates, block, "soft constraint", logger)
	}

	for name, counts := range cfg.PreviousCounts {
		id, ok := r.lookup(name)
		if !ok {
			logger.Warn("Ignoring previous counts for resident not on roster", zap.String("resident", name))
			continue
		}
		p.previous[id] = counts
	}

	return p, nil
}

// addDates clips a request to the block and expands it into the resident's date set.
// Requests naming unknown residents only warn.
func addDates(sets []dateSet, r *roster, name string, dates model.DateRange, block model.DateRange, kind string, logger *zap.Logger) {
	id, ok := r.lookup(name)
	if !ok {
		logger.Warn("Ignoring "+kind+" for resident not on roster", zap.String("resident", name), zap.String("dates", dates.String()))
		return
	}
	if model.Day(dates.End).Before(model.Day(dates.Start)) {
		logger.Warn("Ignoring "+kind+" with end before start", zap.String("resident", name), zap.String("dates", dates.String()))
		return
	}
	clipped, ok := dates.Clip(block)
	if !ok {
		return
	}
	for _, d := range clipped.Days() {
		sets[id][d] = struct{}{}
	}
}

func (p *problem) onLeave(id residentID, date time.Time) bool {
	return p.leave[id].has(date)
}

func (p *problem) prefersOff(id residentID, date time.Time) bool {
	return p.soft[id].has(date)
}

func (p *problem) isFixed(date time.Time) bool {
	_, ok := p.fixed[date]
	return ok
}
