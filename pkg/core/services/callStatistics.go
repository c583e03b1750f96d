package services

import (
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/call-rota/pkg/core/callscheduler"
	"github.com/jakechorley/call-rota/pkg/core/model"
)

// CallStatistics tallies a finished schedule per resident and adds the statistics of earlier
// blocks. Display PGY is the resident's PGY on the last scheduled day.
func CallStatistics(
	rows []model.ScheduleRow,
	residents []model.Resident,
	previous []callscheduler.ResidentStatistics,
	logger *zap.Logger,
) []callscheduler.ResidentStatistics {
	if len(rows) == 0 {
		return nil
	}

	span := scheduleRange(rows)
	stats := callscheduler.CallStatistics(rows, residents, span.End)

	totals, _ := callscheduler.SumStatistics(previous)
	for _, name := range slices.Sorted(maps.Keys(totals)) {
		if !onRoster(residents, name) {
			logger.Warn("Carried-in counts name a resident not on the roster", zap.String("name", name))
		}
	}

	logger.Debug("Computed call statistics",
		zap.Stringer("dates", span),
		zap.Int("residents", len(stats)),
		zap.Int("carried_in", len(totals)))

	return callscheduler.RunningTotals(stats, totals)
}

func onRoster(residents []model.Resident, name string) bool {
	for _, r := range residents {
		if strings.TrimSpace(r.Name) == name {
			return true
		}
	}
	return false
}
