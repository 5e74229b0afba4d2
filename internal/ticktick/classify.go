package ticktick

import (
	"strings"
	"time"
)

// Predicate decides whether a task belongs to a classification bucket.
// Predicates are pure: all time-based ones close over an explicit
// reference instant so results are deterministic and testable.
type Predicate func(Task) bool

// dueTime parses the task's due date. Tasks without a parseable due
// date are simply excluded from date-based buckets; a malformed date is
// never an error here.
func dueTime(task Task) (time.Time, bool) {
	if task.DueDate == "" {
		return time.Time{}, false
	}
	return ParseISOTime(task.DueDate)
}

// calendarDate truncates t to its UTC calendar date.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueToday reports whether the task's due date falls on now's UTC
// calendar date.
func DueToday(task Task, now time.Time) bool {
	due, ok := dueTime(task)
	if !ok {
		return false
	}
	return calendarDate(due).Equal(calendarDate(now))
}

// Overdue reports whether the task's due instant is strictly before
// now. A task due earlier today is both overdue and due today.
func Overdue(task Task, now time.Time) bool {
	due, ok := dueTime(task)
	if !ok {
		return false
	}
	return due.Before(now)
}

// DueInDays reports whether the task is due on exactly the calendar
// date n days from now (UTC). n must be non-negative; negative values
// never match.
func DueInDays(task Task, now time.Time, n int) bool {
	if n < 0 {
		return false
	}
	due, ok := dueTime(task)
	if !ok {
		return false
	}
	target := calendarDate(now).AddDate(0, 0, n)
	return calendarDate(due).Equal(target)
}

// DueWithinWeek reports whether the task's due date falls in the
// inclusive range [today, today+7] of UTC calendar dates.
func DueWithinWeek(task Task, now time.Time) bool {
	due, ok := dueTime(task)
	if !ok {
		return false
	}
	today := calendarDate(now)
	weekOut := today.AddDate(0, 0, 7)
	d := calendarDate(due)
	return !d.Before(today) && !d.After(weekOut)
}

// MatchesSearch reports whether term occurs, case-insensitively, in the
// task title, content, or any checklist item title.
func MatchesSearch(task Task, term string) bool {
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(task.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(task.Content), term) {
		return true
	}
	for _, item := range task.Items {
		if strings.Contains(strings.ToLower(item.Title), term) {
			return true
		}
	}
	return false
}

// Engaged reports whether the task needs immediate attention under the
// GTD workflow: high priority, overdue, or due today.
func Engaged(task Task, now time.Time) bool {
	return task.Priority == PriorityHigh || Overdue(task, now) || DueToday(task, now)
}

// Next reports whether the task is the thing to act on after the
// engaged bucket: medium priority or due tomorrow.
func Next(task Task, now time.Time) bool {
	return task.Priority == PriorityMedium || DueInDays(task, now, 1)
}

// Named predicate constructors, for composing scans.

// All matches every task.
func All() Predicate {
	return func(Task) bool { return true }
}

// ByPriority matches tasks with exactly the given priority level.
func ByPriority(priority int) Predicate {
	return func(t Task) bool { return t.Priority == priority }
}

// DueTodayAt returns a DueToday predicate bound to now.
func DueTodayAt(now time.Time) Predicate {
	return func(t Task) bool { return DueToday(t, now) }
}

// OverdueAt returns an Overdue predicate bound to now.
func OverdueAt(now time.Time) Predicate {
	return func(t Task) bool { return Overdue(t, now) }
}

// DueInDaysAt returns a DueInDays predicate bound to now and n.
func DueInDaysAt(now time.Time, n int) Predicate {
	return func(t Task) bool { return DueInDays(t, now, n) }
}

// DueWithinWeekAt returns a DueWithinWeek predicate bound to now.
func DueWithinWeekAt(now time.Time) Predicate {
	return func(t Task) bool { return DueWithinWeek(t, now) }
}

// Search returns a MatchesSearch predicate bound to term.
func Search(term string) Predicate {
	return func(t Task) bool { return MatchesSearch(t, term) }
}

// EngagedAt returns an Engaged predicate bound to now.
func EngagedAt(now time.Time) Predicate {
	return func(t Task) bool { return Engaged(t, now) }
}

// NextAt returns a Next predicate bound to now.
func NextAt(now time.Time) Predicate {
	return func(t Task) bool { return Next(t, now) }
}
