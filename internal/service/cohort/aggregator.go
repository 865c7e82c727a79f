// Package cohort assigns customers to first-purchase cohorts and computes
// per-offset retention and lifetime-value tables, overall and per category.
package cohort

import (
	"math"
	"sort"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/period"
	"github.com/dtc-labs/orderlens/pkg/config"
)

const (
	cohortType     = "purchase"
	measureRevenue = "revenue"
)

type Aggregator struct {
	catalog   config.CatalogConfig
	maxOffset int
}

func NewAggregator(catalog config.CatalogConfig, maxOffset int) *Aggregator {
	if maxOffset <= 0 {
		maxOffset = 12
	}
	return &Aggregator{catalog: catalog, maxOffset: maxOffset}
}

// assignments is everything the retention and LTV builders share: cohort
// membership plus per-customer purchase months and revenue, all clamped at
// the as-of month.
type assignments struct {
	overall  map[string]map[string]struct{}            // cohort month -> uids
	category map[string]map[string]map[string]struct{} // cohort month -> category -> uids

	purchaseMonths   map[string]map[string]struct{}            // uid -> months with any purchase
	categoryPurchase map[string]map[string]map[string]struct{} // uid -> category -> months

	revenue         map[string]map[string]float64            // uid -> month -> revenue
	categoryRevenue map[string]map[string]map[string]float64 // uid -> category -> month -> share
}

func (a *Aggregator) assign(orders []domain.Order, asOfMonth string) assignments {
	byUid := make(map[string][]domain.Order)
	for _, order := range orders {
		byUid[order.CustomerID] = append(byUid[order.CustomerID], order)
	}

	as := assignments{
		overall:          make(map[string]map[string]struct{}),
		category:         make(map[string]map[string]map[string]struct{}),
		purchaseMonths:   make(map[string]map[string]struct{}),
		categoryPurchase: make(map[string]map[string]map[string]struct{}),
		revenue:          make(map[string]map[string]float64),
		categoryRevenue:  make(map[string]map[string]map[string]float64),
	}

	for uid, userOrders := range byUid {
		sort.Slice(userOrders, func(i, j int) bool {
			if !userOrders[i].Timestamp.Equal(userOrders[j].Timestamp) {
				return userOrders[i].Timestamp.Before(userOrders[j].Timestamp)
			}
			return userOrders[i].Key < userOrders[j].Key
		})
		firstMonth := userOrders[0].MonthKey

		if as.overall[firstMonth] == nil {
			as.overall[firstMonth] = make(map[string]struct{})
		}
		as.overall[firstMonth][uid] = struct{}{}

		var firstMonthCategories []string
		for _, order := range userOrders {
			if order.MonthKey == firstMonth {
				firstMonthCategories = append(firstMonthCategories, order.Verticals...)
			}
		}
		if category := a.prioritize(firstMonthCategories); category != "" {
			if as.category[firstMonth] == nil {
				as.category[firstMonth] = make(map[string]map[string]struct{})
			}
			if as.category[firstMonth][category] == nil {
				as.category[firstMonth][category] = make(map[string]struct{})
			}
			as.category[firstMonth][category][uid] = struct{}{}
		}
	}

	for _, order := range orders {
		if order.MonthKey > asOfMonth {
			continue
		}
		uid := order.CustomerID

		if as.purchaseMonths[uid] == nil {
			as.purchaseMonths[uid] = make(map[string]struct{})
		}
		as.purchaseMonths[uid][order.MonthKey] = struct{}{}

		if as.revenue[uid] == nil {
			as.revenue[uid] = make(map[string]float64)
		}
		as.revenue[uid][order.MonthKey] += order.Price

		if len(order.Verticals) == 0 {
			continue
		}
		share := order.Price / float64(len(order.Verticals))
		for _, category := range order.Verticals {
			if as.categoryPurchase[uid] == nil {
				as.categoryPurchase[uid] = make(map[string]map[string]struct{})
			}
			if as.categoryPurchase[uid][category] == nil {
				as.categoryPurchase[uid][category] = make(map[string]struct{})
			}
			as.categoryPurchase[uid][category][order.MonthKey] = struct{}{}

			if as.categoryRevenue[uid] == nil {
				as.categoryRevenue[uid] = make(map[string]map[string]float64)
			}
			if as.categoryRevenue[uid][category] == nil {
				as.categoryRevenue[uid][category] = make(map[string]float64)
			}
			as.categoryRevenue[uid][category][order.MonthKey] += share
		}
	}

	return as
}

// prioritize picks the cohort category from an order's vertical labels:
// lowest index in the configured priority list wins, unknown labels rank
// last and tie-break alphabetically.
func (a *Aggregator) prioritize(categories []string) string {
	rank := make(map[string]int, len(a.catalog.VerticalPriority))
	for i, category := range a.catalog.VerticalPriority {
		rank[category] = i
	}
	unique := make([]string, 0, len(categories))
	seen := make(map[string]struct{})
	for _, category := range categories {
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		unique = append(unique, category)
	}
	sort.Slice(unique, func(i, j int) bool {
		pi, ok := rank[unique[i]]
		if !ok {
			pi = math.MaxInt32
		}
		pj, ok := rank[unique[j]]
		if !ok {
			pj = math.MaxInt32
		}
		if pi != pj {
			return pi < pj
		}
		return unique[i] < unique[j]
	})
	if len(unique) == 0 {
		return ""
	}
	return unique[0]
}

// Retention computes per-offset repurchase fractions, right-censored at the
// as-of month. Values are raw fractions in [0,1].
func (a *Aggregator) Retention(orders []domain.Order, asOfMonth string) []domain.RetentionRow {
	as := a.assign(orders, asOfMonth)
	rows := []domain.RetentionRow{}

	for _, cohortMonth := range sortedKeys(as.overall) {
		users := as.overall[cohortMonth]
		for m := 0; m <= a.maxOffset; m++ {
			target := period.AddMonths(cohortMonth, m)
			if target > asOfMonth {
				break
			}
			retained := 0
			for uid := range users {
				if _, ok := as.purchaseMonths[uid][target]; ok {
					retained++
				}
			}
			rows = append(rows, domain.RetentionRow{
				CohortMonth: cohortMonth,
				Dimension:   domain.DimensionOverall,
				FirstValue:  "ALL",
				M:           m,
				Metric:      domain.MetricAny,
				CohortSize:  len(users),
				Retention:   fraction(retained, len(users)),
			})
		}
	}

	for _, cohortMonth := range sortedKeys(as.category) {
		byCategory := as.category[cohortMonth]
		for _, category := range sortedKeys(byCategory) {
			users := byCategory[category]
			for m := 0; m <= a.maxOffset; m++ {
				target := period.AddMonths(cohortMonth, m)
				if target > asOfMonth {
					break
				}
				retainedAny, retainedSame := 0, 0
				for uid := range users {
					if _, ok := as.purchaseMonths[uid][target]; ok {
						retainedAny++
					}
					if _, ok := as.categoryPurchase[uid][category][target]; ok {
						retainedSame++
					}
				}
				rows = append(rows,
					domain.RetentionRow{
						CohortMonth: cohortMonth,
						Dimension:   domain.DimensionCategory,
						FirstValue:  category,
						M:           m,
						Metric:      domain.MetricAny,
						CohortSize:  len(users),
						Retention:   fraction(retainedAny, len(users)),
					},
					domain.RetentionRow{
						CohortMonth: cohortMonth,
						Dimension:   domain.DimensionCategory,
						FirstValue:  category,
						M:           m,
						Metric:      domain.MetricSame,
						CohortSize:  len(users),
						Retention:   fraction(retainedSame, len(users)),
					})
			}
		}
	}
	return rows
}

// Ltv computes cumulative per-user revenue over offsets 0..m, divided by
// cohort size and rounded to 2 decimals. The same-category metric uses
// revenue split evenly across a multi-category order's verticals.
func (a *Aggregator) Ltv(orders []domain.Order, asOfMonth string) []domain.LtvRow {
	as := a.assign(orders, asOfMonth)
	rows := []domain.LtvRow{}

	for _, cohortMonth := range sortedKeys(as.overall) {
		users := as.overall[cohortMonth]
		for m := 0; m <= a.maxOffset; m++ {
			if period.AddMonths(cohortMonth, m) > asOfMonth {
				break
			}
			total := 0.0
			for uid := range users {
				for step := 0; step <= m; step++ {
					total += as.revenue[uid][period.AddMonths(cohortMonth, step)]
				}
			}
			rows = append(rows, domain.LtvRow{
				CohortType:  cohortType,
				CohortMonth: cohortMonth,
				Dimension:   domain.DimensionOverall,
				FirstValue:  "ALL",
				M:           m,
				Metric:      domain.MetricAny,
				Measure:     measureRevenue,
				CohortSize:  len(users),
				LtvPerUser:  perUser(total, len(users)),
			})
		}
	}

	for _, cohortMonth := range sortedKeys(as.category) {
		byCategory := as.category[cohortMonth]
		for _, category := range sortedKeys(byCategory) {
			users := byCategory[category]
			for m := 0; m <= a.maxOffset; m++ {
				if period.AddMonths(cohortMonth, m) > asOfMonth {
					break
				}
				totalAny, totalSame := 0.0, 0.0
				for uid := range users {
					for step := 0; step <= m; step++ {
						key := period.AddMonths(cohortMonth, step)
						totalAny += as.revenue[uid][key]
						totalSame += as.categoryRevenue[uid][category][key]
					}
				}
				rows = append(rows,
					domain.LtvRow{
						CohortType:  cohortType,
						CohortMonth: cohortMonth,
						Dimension:   domain.DimensionCategory,
						FirstValue:  category,
						M:           m,
						Metric:      domain.MetricAny,
						Measure:     measureRevenue,
						CohortSize:  len(users),
						LtvPerUser:  perUser(totalAny, len(users)),
					},
					domain.LtvRow{
						CohortType:  cohortType,
						CohortMonth: cohortMonth,
						Dimension:   domain.DimensionCategory,
						FirstValue:  category,
						M:           m,
						Metric:      domain.MetricSame,
						Measure:     measureRevenue,
						CohortSize:  len(users),
						LtvPerUser:  perUser(totalSame, len(users)),
					})
			}
		}
	}
	return rows
}

func fraction(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func perUser(total float64, cohortSize int) float64 {
	if cohortSize == 0 {
		return 0
	}
	return math.Round(total/float64(cohortSize)*100) / 100
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
