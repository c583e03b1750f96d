package callscheduler

import (
	"time"

	"github.com/jakechorley/call-rota/pkg/core/model"
)

// Minimum calendar-day gaps between assignments of the same resident
const (
	CallSpacingDays       = 4 // call after call or backup
	BackupAfterCallDays   = 4
	BackupAfterBackupDays = 3
	InternAfterInternDays = 2
)

// callTemplate lists the PGY levels allowed to take primary call on each weekday
var callTemplate = map[time.Weekday][]int{
	time.Monday:    {3},
	time.Tuesday:   {2},
	time.Wednesday: {2, 3},
	time.Thursday:  {3, 4},
	time.Friday:    {2},
	time.Saturday:  {3},
	time.Sunday:    {2},
}

// CallAllowed reports whether a resident of the given PGY may take primary call on date
func CallAllowed(pgy int, date time.Time) bool {
	for _, allowed := range callTemplate[date.Weekday()] {
		if allowed == pgy {
			return true
		}
	}
	return false
}

// BackupAllowed reports whether a resident of the given PGY may take backup on any date
func BackupAllowed(pgy int) bool {
	return pgy >= 2
}

// spacedFrom reports whether every date in log is at least gap days away from date
func spacedFrom(log []time.Time, date time.Time, gap int) bool {
	for _, d := range log {
		if model.AbsDaysBetween(d, date) < gap {
			return false
		}
	}
	return true
}

// isEligible answers whether a resident may fill role on date given the trial's state so far.
// Each predicate below is independent; all of them must hold.
func (t *trial) isEligible(id residentID, date time.Time, role model.Role) bool {
	if fp, ok := t.p.fixed[date]; ok {
		switch role {
		case model.RoleCall:
			return id == fp.call
		case model.RoleBackup:
			return id == fp.backup
		}
		return false
	}

	if t.p.onLeave(id, date) {
		return false
	}

	pgy := t.p.roster.pgy(id, date)
	switch role {
	case model.RoleCall:
		return CallAllowed(pgy, date) && t.callSpacingOK(id, date) && t.withinCap(id, pgy)
	case model.RoleBackup:
		return BackupAllowed(pgy) && t.backupSpacingOK(id, date)
	case model.RoleIntern:
		return pgy == 1 && spacedFrom(t.internLog[id], date, InternAfterInternDays)
	}
	return false
}

func (t *trial) callSpacingOK(id residentID, date time.Time) bool {
	return spacedFrom(t.callLog[id], date, CallSpacingDays) &&
		spacedFrom(t.backupLog[id], date, CallSpacingDays)
}

func (t *trial) backupSpacingOK(id residentID, date time.Time) bool {
	return spacedFrom(t.callLog[id], date, BackupAfterCallDays) &&
		spacedFrom(t.backupLog[id], date, BackupAfterBackupDays)
}

// withinCap enforces the per-block PGY-4 call cap. The count covers every call taken in
// this block so far, fixed holidays included.
func (t *trial) withinCap(id residentID, pgy int) bool {
	if pgy != 4 {
		return true
	}
	return t.counts[id].Total < t.p.pgy4Cap
}
