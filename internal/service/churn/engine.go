// Package churn derives consecutive-period retention tables, subscriber
// survival curves and active-base waterfalls from simulated active sets.
// One transition classifier serves every granularity: each customer present
// in either side of a period boundary is exactly one of retained, churned,
// new (first-ever) or reactivated (returning after a gap).
package churn

import (
	"sort"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/period"
	"github.com/dtc-labs/orderlens/internal/service/coverage"
	"github.com/dtc-labs/orderlens/pkg/config"
)

type Engine struct {
	catalog   config.CatalogConfig
	maxOffset int
}

func NewEngine(catalog config.CatalogConfig, maxOffset int) *Engine {
	if maxOffset <= 0 {
		maxOffset = 12
	}
	return &Engine{catalog: catalog, maxOffset: maxOffset}
}

// transition is one period boundary of an active-set series.
// Invariants: retained+churned == prevActive and
// newActive+reactivated == len(curr) - retained.
type transition struct {
	period        string
	prevActive    int
	retained      int
	churned       int
	newActive     int
	reactivated   int
	churnRate     float64
	retentionRate float64
}

func transitions(set domain.ActiveSet, periods []string) []transition {
	firstSeen := make(map[string]string)
	for _, p := range periods {
		for id := range set.Get(p) {
			if _, ok := firstSeen[id]; !ok {
				firstSeen[id] = p
			}
		}
	}

	out := make([]transition, 0, len(periods))
	for i := 1; i < len(periods); i++ {
		prev := set.Get(periods[i-1])
		curr := set.Get(periods[i])

		t := transition{period: periods[i], prevActive: len(prev)}
		for id := range prev {
			if _, ok := curr[id]; ok {
				t.retained++
			}
		}
		t.churned = t.prevActive - t.retained
		for id := range curr {
			if _, ok := prev[id]; ok {
				continue
			}
			if firstSeen[id] == periods[i] {
				t.newActive++
			} else {
				t.reactivated++
			}
		}
		if t.prevActive > 0 {
			t.churnRate = float64(t.churned) / float64(t.prevActive)
			t.retentionRate = float64(t.retained) / float64(t.prevActive)
		}
		out = append(out, t)
	}
	return out
}

// Summary computes the monthly, daily and weekly consecutive-period tables.
func (e *Engine) Summary(sets *coverage.Sets) domain.ChurnSummary {
	summary := domain.ChurnSummary{
		Months:          sets.Months,
		Overview:        []domain.ChurnRow{},
		ByCategory:      []domain.ChurnByCategoryRow{},
		Daily:           []domain.DailyActiveRow{},
		DailyRetention:  []domain.DailyRetentionRow{},
		WeeklyRetention: []domain.WeeklyRetentionRow{},
		MonthlyActive:   []domain.MonthlyActiveRow{},
	}
	if len(sets.Months) == 0 {
		summary.Months = []string{}
		return summary
	}

	segments := []struct {
		label domain.Segment
		set   domain.ActiveSet
	}{
		{domain.SegmentSubscribers, sets.SubscriptionMonthly},
		{domain.SegmentOnetime, sets.OnetimeMonthly},
		{domain.SegmentTotal, sets.TotalMonthly},
	}
	for _, seg := range segments {
		for _, t := range transitions(seg.set, sets.Months) {
			summary.Overview = append(summary.Overview, domain.ChurnRow{
				Month:       t.period,
				Label:       seg.label,
				PrevActive:  t.prevActive,
				Retained:    t.retained,
				Churned:     t.churned,
				ChurnRate:   t.churnRate,
				NewActive:   t.newActive,
				Reactivated: t.reactivated,
			})
		}
	}

	for _, category := range sortedCategories(sets.CategoryMonthly) {
		for _, t := range transitions(sets.CategoryMonthly[category], sets.Months) {
			summary.ByCategory = append(summary.ByCategory, domain.ChurnByCategoryRow{
				Month:       t.period,
				Category:    category,
				PrevActive:  t.prevActive,
				Retained:    t.retained,
				Churned:     t.churned,
				ChurnRate:   t.churnRate,
				NewActive:   t.newActive,
				Reactivated: t.reactivated,
			})
		}
	}

	days := sets.TotalDaily.Periods()
	for _, day := range days {
		summary.Daily = append(summary.Daily, domain.DailyActiveRow{
			Date:        day,
			Subscribers: sets.SubscriptionDaily.Size(day),
			Onetime:     sets.OnetimeDaily.Size(day),
			Total:       sets.TotalDaily.Size(day),
		})
	}

	dailySegments := []struct {
		label domain.Segment
		set   domain.ActiveSet
	}{
		{domain.SegmentSubscribers, sets.SubscriptionDaily},
		{domain.SegmentOnetime, sets.OnetimeDaily},
		{domain.SegmentTotal, sets.TotalDaily},
	}
	for _, seg := range dailySegments {
		for _, t := range transitions(seg.set, days) {
			summary.DailyRetention = append(summary.DailyRetention, domain.DailyRetentionRow{
				Date:          t.period,
				Label:         seg.label,
				PrevActive:    t.prevActive,
				Retained:      t.retained,
				Churned:       t.churned,
				ChurnRate:     t.churnRate,
				RetentionRate: t.retentionRate,
				NewActive:     t.newActive,
				Reactivated:   t.reactivated,
			})
		}
		weekly := weeklyBuckets(seg.set)
		weeks := weekly.Periods()
		for _, t := range transitions(weekly, weeks) {
			summary.WeeklyRetention = append(summary.WeeklyRetention, domain.WeeklyRetentionRow{
				Week:          t.period,
				Label:         seg.label,
				PrevActive:    t.prevActive,
				Retained:      t.retained,
				Churned:       t.churned,
				RetentionRate: t.retentionRate,
			})
		}
	}

	for _, month := range sets.Months {
		summary.MonthlyActive = append(summary.MonthlyActive, domain.MonthlyActiveRow{
			Month:       month,
			Subscribers: sets.SubscriptionMonthly.Size(month),
			Onetime:     sets.OnetimeMonthly.Size(month),
			Total:       sets.TotalMonthly.Size(month),
		})
	}

	return summary
}

// weeklyBuckets folds a daily active set into Monday-start weekly sets.
func weeklyBuckets(daily domain.ActiveSet) domain.ActiveSet {
	weeks := make(domain.ActiveSet)
	for day, ids := range daily {
		week := period.WeekStart(day)
		for id := range ids {
			weeks.Add(week, id)
		}
	}
	return weeks
}

// Survival computes subscriber survival curves for subscription categories:
// the fraction of each first-month cohort still present in the category's
// active set at cohort+m.
func (e *Engine) Survival(sets *coverage.Sets) []domain.SurvivalRow {
	rows := []domain.SurvivalRow{}
	categories := append([]string(nil), e.catalog.SubscriptionVerticals...)
	sort.Strings(categories)

	for _, category := range categories {
		store, ok := sets.CategoryMonthly[category]
		if !ok {
			continue
		}
		months := store.Periods()

		firstSeen := make(map[string]string)
		for _, month := range months {
			for id := range store.Get(month) {
				if _, seen := firstSeen[id]; !seen {
					firstSeen[id] = month
				}
			}
		}
		cohorts := make(map[string]map[string]struct{})
		for id, month := range firstSeen {
			if cohorts[month] == nil {
				cohorts[month] = make(map[string]struct{})
			}
			cohorts[month][id] = struct{}{}
		}

		cohortMonths := make([]string, 0, len(cohorts))
		for month := range cohorts {
			cohortMonths = append(cohortMonths, month)
		}
		sort.Strings(cohortMonths)

		for _, cohortMonth := range cohortMonths {
			users := cohorts[cohortMonth]
			for m := 0; m <= e.maxOffset; m++ {
				target := period.AddMonths(cohortMonth, m)
				if target > sets.AsOfMonth {
					break
				}
				active := store.Get(target)
				still := 0
				for id := range users {
					if _, ok := active[id]; ok {
						still++
					}
				}
				rate := 0.0
				if len(users) > 0 {
					rate = float64(still) / float64(len(users))
				}
				rows = append(rows, domain.SurvivalRow{
					CohortMonth:  cohortMonth,
					Category:     category,
					M:            m,
					CohortSize:   len(users),
					SurvivalRate: rate,
				})
			}
		}
	}
	return rows
}

// Waterfall reconciles the monthly active base per category, plus an "ALL"
// aggregate over the unioned total sets. Every row satisfies
// end = start + new + reactivated - churned.
func (e *Engine) Waterfall(sets *coverage.Sets) []domain.WaterfallRow {
	rows := []domain.WaterfallRow{}
	rows = append(rows, e.waterfallSeries("ALL", sets.TotalMonthly, sets.Months)...)
	for _, category := range sortedCategories(sets.CategoryMonthly) {
		rows = append(rows, e.waterfallSeries(category, sets.CategoryMonthly[category], sets.Months)...)
	}
	return rows
}

func (e *Engine) waterfallSeries(category string, set domain.ActiveSet, months []string) []domain.WaterfallRow {
	rows := make([]domain.WaterfallRow, 0, len(months))
	prev := map[string]struct{}{}
	seenBefore := make(map[string]struct{})

	for _, month := range months {
		curr := set.Get(month)

		row := domain.WaterfallRow{
			Month:       month,
			Category:    category,
			StartActive: len(prev),
			EndActive:   len(curr),
		}
		for id := range prev {
			if _, ok := curr[id]; !ok {
				row.Churned++
			}
		}
		for id := range curr {
			if _, ok := prev[id]; ok {
				continue
			}
			if _, ok := seenBefore[id]; ok {
				row.Reactivated++
			} else {
				row.NewActive++
			}
		}
		rows = append(rows, row)

		for id := range curr {
			seenBefore[id] = struct{}{}
		}
		prev = curr
		if prev == nil {
			prev = map[string]struct{}{}
		}
	}
	return rows
}

func sortedCategories(stores map[string]domain.ActiveSet) []string {
	out := make([]string, 0, len(stores))
	for category := range stores {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}
