package callscheduler

import (
	"slices"
	"strings"
	"time"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

type residentID int

// noResident marks an empty role, e.g. a date without an intern
const noResident residentID = -1

// roster is the immutable resident table for a run. Residents are addressed by index
// and grouped by PGY per transition segment: the PGY index only changes on the day after
// a transition date, so one grouping per segment covers every date.
type roster struct {
	residents  []model.Resident
	byName     map[string]residentID
	boundaries []time.Time
	segments   [][5][]residentID
}

func newRoster(residents []model.Resident) (*roster, error) {
	if len(residents) == 0 {
		return nil, invalidInput("roster is empty")
	}

	r := &roster{
		residents: make([]model.Resident, len(residents)),
		byName:    make(map[string]residentID, len(residents)),
	}

	for i, res := range residents {
		res.Name = strings.TrimSpace(res.Name)
		if res.Name == "" {
			return nil, invalidInput("resident %d has no name", i+1)
		}
		if _, exists := r.byName[res.Name]; exists {
			return nil, invalidInput("duplicate resident %q", res.Name)
		}
		if res.PGY < 1 || res.PGY > 4 {
			return nil, invalidInput("resident %q has PGY %d, expected 1-4", res.Name, res.PGY)
		}
		if res.Transition != nil {
			if res.Transition.PGY < 1 || res.Transition.PGY > 4 {
				return nil, invalidInput("resident %q transitions to PGY %d, expected 1-4", res.Name, res.Transition.PGY)
			}
			t := *res.Transition
			t.Date = model.Day(t.Date)
			res.Transition = &t
			if !slices.ContainsFunc(r.boundaries, t.Date.Equal) {
				r.boundaries = append(r.boundaries, t.Date)
			}
		}
		r.residents[i] = res
		r.byName[res.Name] = residentID(i)
	}

	slices.SortFunc(r.boundaries, func(a, b time.Time) int { return a.Compare(b) })

	r.segments = make([][5][]residentID, len(r.boundaries)+1)
	for s := range r.segments {
		// Any date in segment s is after boundaries[s-1] and not after boundaries[s]
		var representative time.Time
		switch {
		case len(r.boundaries) == 0:
		case s == 0:
			representative = r.boundaries[0]
		default:
			representative = r.boundaries[s-1].AddDate(0, 0, 1)
		}
		for id, res := range r.residents {
			pgy := res.PGYOn(representative)
			r.segments[s][pgy] = append(r.segments[s][pgy], residentID(id))
		}
	}

	return r, nil
}

func (r *roster) size() int {
	return len(r.residents)
}

func (r *roster) lookup(name string) (residentID, bool) {
	id, ok := r.byName[strings.TrimSpace(name)]
	return id, ok
}

func (r *roster) name(id residentID) string {
	if id == noResident {
		return ""
	}
	return r.residents[id].Name
}

func (r *roster) pgy(id residentID, date time.Time) int {
	return r.residents[id].PGYOn(date)
}

// withPGY returns the residents holding pgy on date, in roster order
func (r *roster) withPGY(pgy int, date time.Time) []residentID {
	if pgy < 1 || pgy > 4 {
		return nil
	}
	return r.segments[r.segment(date)][pgy]
}

func (r *roster) segment(date time.Time) int {
	date = model.Day(date)
	s := 0
	for _, b := range r.boundaries {
		if date.After(b) {
			s++
		}
	}
	return s
}
