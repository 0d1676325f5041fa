// Package statistics summarizes a user's drill progress.
package statistics

import (
	"sort"

	"github.com/at-ishikawa/quizdrill/internal/ledger"
)

// Progress is the overall status of a user against the catalog.
type Progress struct {
	Total     int // Questions in the catalog
	Attempted int // Questions with a recorded outcome
	Correct   int // Questions whose latest outcome is correct
	Wrong     int // Questions whose latest outcome is wrong
}

// Accuracy is the share of attempted questions answered correctly, in percent.
func (p Progress) Accuracy() float64 {
	if p.Attempted == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Attempted) * 100
}

// Completion is attempted over total, capped at 1.
// Rows of questions removed from the bank still count as attempted.
func (p Progress) Completion() float64 {
	if p.Total == 0 {
		return 0
	}
	return min(float64(p.Attempted)/float64(p.Total), 1)
}

// PeriodStatistics counts the latest outcomes last updated in one month.
type PeriodStatistics struct {
	Period  string // "2025-01"
	Correct int
	Wrong   int
}

// Calculate returns the progress of snapshot against a catalog of total questions.
func Calculate(total int, snapshot ledger.Snapshot) Progress {
	progress := Progress{Total: total, Attempted: len(snapshot)}
	for _, attempt := range snapshot {
		if attempt.IsCorrect {
			progress.Correct++
		} else {
			progress.Wrong++
		}
	}
	return progress
}

// ByPeriod groups the snapshot by the month of the last update, newest first.
// year and month filter the periods; 0 means no filter.
func ByPeriod(snapshot ledger.Snapshot, year, month int) []PeriodStatistics {
	stats := make(map[string]*PeriodStatistics)
	for _, attempt := range snapshot {
		// Skip rows without a timestamp
		if attempt.UpdatedAt.IsZero() {
			continue
		}
		if !matchesFilter(attempt.UpdatedAt.Year(), int(attempt.UpdatedAt.Month()), year, month) {
			continue
		}

		period := attempt.UpdatedAt.Format("2006-01")
		if stats[period] == nil {
			stats[period] = &PeriodStatistics{Period: period}
		}
		if attempt.IsCorrect {
			stats[period].Correct++
		} else {
			stats[period].Wrong++
		}
	}

	periods := make([]PeriodStatistics, 0, len(stats))
	for _, s := range stats {
		periods = append(periods, *s)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})
	return periods
}

func matchesFilter(logYear, logMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if logYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return logMonth == filterMonth
}
