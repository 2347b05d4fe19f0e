package client

import "time"

// DueState classifies a due date relative to today.
type DueState string

const (
	DueOverdue  DueState = "overdue"
	DueToday    DueState = "due-today"
	DueSoon     DueState = "due-soon"
	DueUpcoming DueState = "upcoming"
)

const dueSoonDays = 3

// DaysUntilDue counts calendar days from now to due. The due date is read
// on its own calendar (the API returns UTC, so date-only values keep their
// day) and today is read in now's location.
func DaysUntilDue(due, now time.Time) int {
	dy, dm, dd := due.Date()
	ny, nm, nd := now.Date()
	dueDay := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(dueDay.Sub(today).Hours() / 24)
}

func DueStatus(due, now time.Time) DueState {
	switch days := DaysUntilDue(due, now); {
	case days < 0:
		return DueOverdue
	case days == 0:
		return DueToday
	case days <= dueSoonDays:
		return DueSoon
	default:
		return DueUpcoming
	}
}
