// Package views derives display data from the tracker collections. Every
// function is pure: inputs are never modified and "now" is passed in.
package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Tiliavir/workday-tracker/internal/model"
	"github.com/Tiliavir/workday-tracker/internal/timecalc"
)

// DateGroup is one calendar day of completed jobs.
type DateGroup struct {
	Date string
	Jobs []model.JobEntry
}

// GroupByCalendarDate buckets completed jobs by the local day of their end
// time. Buckets are ordered newest first; jobs inside a bucket by start time.
func GroupByCalendarDate(jobs []model.JobEntry) []DateGroup {
	byDate := map[string][]model.JobEntry{}
	for _, j := range jobs {
		if j.EndTime == nil {
			continue
		}
		key := timecalc.DateKey(*j.EndTime)
		byDate[key] = append(byDate[key], j.Clone())
	}

	groups := make([]DateGroup, 0, len(byDate))
	for date, js := range byDate {
		sort.SliceStable(js, func(a, b int) bool { return js[a].StartTime.Before(js[b].StartTime) })
		groups = append(groups, DateGroup{Date: date, Jobs: js})
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Date > groups[b].Date })
	return groups
}

// DurationText renders the whole minutes between start and end as "1h 25m"
// or "25m".
func DurationText(start, end time.Time) string {
	return timecalc.FormatMinutes(timecalc.Minutes(start, end))
}

// JobDuration is DurationText for a job. Active jobs are measured up to now.
func JobDuration(job model.JobEntry, now time.Time) string {
	end := now
	if job.EndTime != nil {
		end = *job.EndTime
	}
	return DurationText(job.StartTime, end)
}

// SessionDuration is DurationText for a session. Open sessions are measured
// up to now.
func SessionDuration(ws model.WorkSession, now time.Time) string {
	end := now
	if ws.ClockOut != nil {
		end = *ws.ClockOut
	}
	return DurationText(ws.ClockIn, end)
}

// InMonth reports whether job ended in the given month of year, judged by
// the local calendar day. Active jobs are never in any month.
func InMonth(job model.JobEntry, month time.Month, year int) bool {
	if job.EndTime == nil {
		return false
	}
	end := job.EndTime.In(time.Local)
	return end.Month() == month && end.Year() == year
}

// FilterByMonth keeps the jobs for which InMonth holds.
func FilterByMonth(jobs []model.JobEntry, month time.Month, year int) []model.JobEntry {
	var out []model.JobEntry
	for _, j := range jobs {
		if InMonth(j, month, year) {
			out = append(out, j.Clone())
		}
	}
	return out
}

// JobsForDate returns the jobs that started on the local day date, ordered
// by start time. This is the only link between a session and its jobs.
func JobsForDate(date string, jobs []model.JobEntry) []model.JobEntry {
	var out []model.JobEntry
	for _, j := range jobs {
		if timecalc.DateKey(j.StartTime) == date {
			out = append(out, j.Clone())
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].StartTime.Before(out[b].StartTime) })
	return out
}

// Remaining returns how much of the expected working time is left in the
// session at now. It is zero once the target is reached.
func Remaining(ws model.WorkSession, expectedHours float64, now time.Time) time.Duration {
	end := now
	if ws.ClockOut != nil {
		end = *ws.ClockOut
	}
	worked := end.Sub(ws.ClockIn)
	if worked < 0 {
		worked = 0
	}
	left := time.Duration(expectedHours*float64(time.Hour)) - worked
	if left < 0 {
		return 0
	}
	return left
}

// InProgressSummary is returned by DaySummary for a session that is still open.
const InProgressSummary = "Work in progress..."

const (
	summaryDate = "01/02/2006"
	summaryTime = "03:04 PM"
)

// DaySummary renders the shareable report of a closed session: the date, the
// clock-in time, every completed job that lies inside the session, the
// clock-out time and the total.
func DaySummary(ws model.WorkSession, jobs []model.JobEntry) string {
	if ws.ClockOut == nil {
		return InProgressSummary
	}
	in := ws.ClockIn.In(time.Local)
	out := ws.ClockOut.In(time.Local)

	var inside []model.JobEntry
	for _, j := range jobs {
		if j.EndTime == nil || j.StartTime.Before(in) || j.EndTime.After(out) {
			continue
		}
		inside = append(inside, j)
	}
	sort.SliceStable(inside, func(a, b int) bool { return inside[a].StartTime.Before(inside[b].StartTime) })

	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n\n", in.Format(summaryDate))
	fmt.Fprintf(&b, "In-Time: %s\n\n", in.Format(summaryTime))
	for _, j := range inside {
		fmt.Fprintf(&b, "(%s--%s) %s: %s\n",
			j.StartTime.In(time.Local).Format(summaryTime),
			j.EndTime.In(time.Local).Format(summaryTime),
			j.Name, j.Description)
	}
	fmt.Fprintf(&b, "\nOut-time: %s\n\n", out.Format(summaryTime))
	minutes := timecalc.Minutes(in, out)
	fmt.Fprintf(&b, "Total working hours: %dh %dm", minutes/60, minutes%60)
	return b.String()
}

// DayLabel names date relative to now: "Today", "Yesterday" or a long date
// such as "Friday, February 27, 2026".
func DayLabel(date string, now time.Time) string {
	day, err := timecalc.ParseDateKey(date)
	if err != nil {
		return date
	}
	switch date {
	case timecalc.DateKey(now):
		return "Today"
	case timecalc.DateKey(now.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return day.Format("Monday, January 2, 2006")
}

// DayTotal is the worked time of one closed session.
type DayTotal struct {
	Date    string `json:"date"`
	Minutes int64  `json:"minutes"`
}

// WeekReport sums the closed sessions of one ISO week.
type WeekReport struct {
	Week         string     `json:"week"`
	Days         []DayTotal `json:"days"`
	TotalMinutes int64      `json:"total_minutes"`
}

// WeekTotals reports the closed sessions of the ISO week containing now,
// ordered by date.
func WeekTotals(sessions []model.WorkSession, now time.Time) WeekReport {
	local := now.In(time.Local)
	monday, sunday := timecalc.WeekRange(local)
	from, to := timecalc.DateKey(monday), timecalc.DateKey(sunday)

	report := WeekReport{Week: timecalc.ISOWeekLabel(local), Days: []DayTotal{}}
	for _, ws := range sessions {
		if ws.ClockOut == nil || ws.Date < from || ws.Date > to {
			continue
		}
		m := timecalc.Minutes(ws.ClockIn, *ws.ClockOut)
		report.Days = append(report.Days, DayTotal{Date: ws.Date, Minutes: m})
		report.TotalMinutes += m
	}
	sort.Slice(report.Days, func(a, b int) bool { return report.Days[a].Date < report.Days[b].Date })
	return report
}
