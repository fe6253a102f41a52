package report

import (
	"fmt"
	"sort"
	"strings"
)

type Total struct {
	Key   string
	Hours float64
}

// SumBy groups rows by key and sums hours. Results are ordered by hours,
// largest first, ties broken by key.
func SumBy(rows []Row, key func(Row) string) []Total {
	sums := map[string]float64{}
	for _, r := range rows {
		sums[key(r)] += r.Hours
	}
	totals := make([]Total, 0, len(sums))
	for k, h := range sums {
		totals = append(totals, Total{Key: k, Hours: Round2(h)})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Hours != totals[j].Hours {
			return totals[i].Hours > totals[j].Hours
		}
		return totals[i].Key < totals[j].Key
	})
	return totals
}

// sumByChronological groups like SumBy but orders by key, which for date
// keys is chronological.
func sumByChronological(rows []Row, key func(Row) string) []Total {
	totals := SumBy(rows, key)
	sort.Slice(totals, func(i, j int) bool { return totals[i].Key < totals[j].Key })
	return totals
}

func ByProject(rows []Row) []Total { return SumBy(rows, func(r Row) string { return r.Project }) }
func ByIssue(rows []Row) []Total   { return SumBy(rows, func(r Row) string { return r.IssueKey }) }
func ByAuthor(rows []Row) []Total  { return SumBy(rows, func(r Row) string { return r.Author }) }
func ByDay(rows []Row) []Total     { return sumByChronological(rows, Row.Date) }
func ByMonth(rows []Row) []Total   { return sumByChronological(rows, Row.Month) }

// DaySeries is the hours per issue on one day.
type DaySeries struct {
	Date   string
	Issues []Total
}

// ByDayAndIssue returns one entry per day, in date order, with that day's
// hours split by issue.
func ByDayAndIssue(rows []Row) []DaySeries {
	byDay := map[string][]Row{}
	for _, r := range rows {
		byDay[r.Date()] = append(byDay[r.Date()], r)
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	series := make([]DaySeries, 0, len(days))
	for _, d := range days {
		series = append(series, DaySeries{Date: d, Issues: ByIssue(byDay[d])})
	}
	return series
}

func TotalHours(rows []Row) float64 {
	sum := 0.0
	for _, r := range rows {
		sum += r.Hours
	}
	return Round2(sum)
}

// Context renders project, issue and author totals as plain text lines for a
// language model.
func Context(rows []Row) string {
	var sb strings.Builder
	for _, t := range sortedByKey(ByProject(rows)) {
		fmt.Fprintf(&sb, "Project: %s | Total Hours: %s\n", t.Key, formatHours(t.Hours))
	}
	for _, t := range sortedByKey(ByIssue(rows)) {
		fmt.Fprintf(&sb, "Issue: %s | Total Hours: %s\n", t.Key, formatHours(t.Hours))
	}
	for _, t := range sortedByKey(ByAuthor(rows)) {
		fmt.Fprintf(&sb, "Author: %s | Total Hours: %s\n", t.Key, formatHours(t.Hours))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func sortedByKey(totals []Total) []Total {
	sort.Slice(totals, func(i, j int) bool { return totals[i].Key < totals[j].Key })
	return totals
}

func formatHours(h float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", h), "0"), ".")
}
