package leaverequests

import (
	"sort"
	"strings"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Matched holds requests resolved against a roster
type Matched struct {
	Leave           []model.LeaveRequest
	SoftConstraints []model.SoftConstraint

	// Unmatched lists, sorted, the names that did not match anyone on the roster
	Unmatched []string
}

// MatchRoster resolves request names to roster names case-insensitively and splits the
// requests into hard leave and soft constraints
func MatchRoster(requests []Request, residents []model.Resident) Matched {
	byKey := make(map[string]string, len(residents))
	for _, r := range residents {
		byKey[nameKey(r.Name)] = strings.TrimSpace(r.Name)
	}

	var out Matched
	unmatched := make(map[string]struct{})
	for _, req := range requests {
		name, ok := byKey[nameKey(req.Resident)]
		if !ok {
			unmatched[strings.TrimSpace(req.Resident)] = struct{}{}
			continue
		}
		switch req.Kind {
		case KindPTO:
			out.Leave = append(out.Leave, model.LeaveRequest{Resident: name, Dates: req.Dates})
		case KindNonCall:
			out.SoftConstraints = append(out.SoftConstraints, model.SoftConstraint{Resident: name, Dates: req.Dates})
		}
	}

	for name := range unmatched {
		out.Unmatched = append(out.Unmatched, name)
	}
	sort.Strings(out.Unmatched)
	return out
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
