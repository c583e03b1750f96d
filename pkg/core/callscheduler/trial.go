package callscheduler

import (
	"math/rand/v2"
	"time"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// assignment is one committed date of a trial
type assignment struct {
	date   time.Time
	call   residentID
	backup residentID
	intern residentID
	fixed  bool
}

// trial owns all state for one attempt at filling the block. Nothing here is shared
// with other trials; the problem it points to is read-only.
type trial struct {
	p     *problem
	index int
	rng   *rand.Rand

	callLog   [][]time.Time
	backupLog [][]time.Time
	internLog [][]time.Time

	// counts are this block's call counts. They start at zero for every trial, so
	// counts[id].Total doubles as the block-scoped total used by the PGY-4 cap.
	counts         []model.CallCounts
	backupCounts   []int
	internWeekday  []int
	internSaturday []int

	assignments []assignment
	violations  int
}

// trialRNG returns the random stream for trial index of a run seeded with seed
func trialRNG(seed uint64, index int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(index)))
}

func newTrial(p *problem, index int, rng *rand.Rand) *trial {
	n := p.roster.size()
	t := &trial{
		p:              p,
		index:          index,
		rng:            rng,
		callLog:        make([][]time.Time, n),
		backupLog:      make([][]time.Time, n),
		internLog:      make([][]time.Time, n),
		counts:         make([]model.CallCounts, n),
		backupCounts:   make([]int, n),
		internWeekday:  make([]int, n),
		internSaturday: make([]int, n),
		assignments:    make([]assignment, 0, len(p.days)),
	}
	// Fixed assignments are known up front, so spacing is checked against them in both directions
	for id := range n {
		t.callLog[id] = append(t.callLog[id], p.seedCalls[id]...)
		t.backupLog[id] = append(t.backupLog[id], p.seedBackups[id]...)
	}
	return t
}

// run walks every date of the block in order. It stops at the first date that cannot
// be filled and returns it with ok false.
func (t *trial) run() (failedOn time.Time, ok bool) {
	for _, date := range t.p.days {
		if !t.assignDay(date) {
			return date, false
		}
	}
	return time.Time{}, true
}

func (t *trial) commit(date time.Time, call, backup, intern residentID, fixed bool) {
	t.assignments = append(t.assignments, assignment{
		date:   date,
		call:   call,
		backup: backup,
		intern: intern,
		fixed:  fixed,
	})

	if !fixed {
		t.callLog[call] = append(t.callLog[call], date)
		t.backupLog[backup] = append(t.backupLog[backup], date)
	}
	t.counts[call] = t.counts[call].Add(countsFor(date))
	t.backupCounts[backup]++

	if intern != noResident {
		t.internLog[intern] = append(t.internLog[intern], date)
		if date.Weekday() == time.Saturday {
			t.internSaturday[intern]++
		} else {
			t.internWeekday[intern]++
		}
	}

	for _, id := range []residentID{call, backup, intern} {
		if id != noResident && t.p.prefersOff(id, date) {
			t.violations++
		}
	}
}

// countsFor returns a tally holding a single call on date
func countsFor(date time.Time) model.CallCounts {
	c := model.CallCounts{Total: 1}
	switch model.DayTypeOf(date) {
	case model.DayTypeWeekday:
		c.Weekday = 1
	case model.DayTypeFriday:
		c.Fridays = 1
	case model.DayTypeSaturday:
		c.Saturday = 1
	case model.DayTypeSunday:
		c.Sunday = 1
	}
	return c
}
