// Package coverage expands normalized orders into per-granularity active
// customer sets by simulating each order's coverage window: a subscription
// covers [orderDate, orderDate+cadence months), a one-time purchase covers a
// fixed spillover window from the order date.
package coverage

import (
	"sort"
	"time"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/period"
	"github.com/dtc-labs/orderlens/pkg/config"
)

// Sets holds every active set derived from one simulation pass, all
// right-censored at the as-of month.
type Sets struct {
	AsOfMonth string

	SubscriptionMonthly domain.ActiveSet
	OnetimeMonthly      domain.ActiveSet
	TotalMonthly        domain.ActiveSet
	CategoryMonthly     map[string]domain.ActiveSet

	SubscriptionDaily domain.ActiveSet
	OnetimeDaily      domain.ActiveSet
	TotalDaily        domain.ActiveSet

	// Months is the ordered union of monthly period keys <= AsOfMonth.
	Months []string
}

type Simulator struct {
	catalog           config.CatalogConfig
	onetimeWindowDays int
}

func NewSimulator(catalog config.CatalogConfig, onetimeWindowDays int) *Simulator {
	if onetimeWindowDays <= 0 {
		onetimeWindowDays = 30
	}
	return &Simulator{catalog: catalog, onetimeWindowDays: onetimeWindowDays}
}

// IsSubscription classifies an order: subscription if any of its verticals
// belongs to the subscription set.
func (s *Simulator) IsSubscription(order domain.Order) bool {
	for _, v := range order.Verticals {
		if s.catalog.IsSubscriptionVertical(v) {
			return true
		}
	}
	return false
}

// Expand simulates every order's coverage window into monthly and daily
// active sets. asOfMonth caps all emitted period keys.
func (s *Simulator) Expand(orders []domain.Order, asOfMonth string) *Sets {
	sets := &Sets{
		AsOfMonth:           asOfMonth,
		SubscriptionMonthly: make(domain.ActiveSet),
		OnetimeMonthly:      make(domain.ActiveSet),
		TotalMonthly:        make(domain.ActiveSet),
		CategoryMonthly:     make(map[string]domain.ActiveSet),
		SubscriptionDaily:   make(domain.ActiveSet),
		OnetimeDaily:        make(domain.ActiveSet),
		TotalDaily:          make(domain.ActiveSet),
	}
	if asOfMonth == "" {
		return sets
	}
	dailyCutoff := period.MonthEnd(asOfMonth)

	for _, order := range orders {
		if s.IsSubscription(order) {
			s.expandSubscription(sets, order, dailyCutoff)
		} else {
			s.expandOnetime(sets, order, dailyCutoff)
		}
	}

	monthSet := make(map[string]struct{})
	for month := range sets.SubscriptionMonthly {
		if month <= asOfMonth {
			monthSet[month] = struct{}{}
		}
	}
	for month := range sets.OnetimeMonthly {
		if month <= asOfMonth {
			monthSet[month] = struct{}{}
		}
	}
	sets.Months = make([]string, 0, len(monthSet))
	for month := range monthSet {
		sets.Months = append(sets.Months, month)
	}
	sort.Strings(sets.Months)

	for _, month := range sets.Months {
		for id := range sets.SubscriptionMonthly.Get(month) {
			sets.TotalMonthly.Add(month, id)
		}
		for id := range sets.OnetimeMonthly.Get(month) {
			sets.TotalMonthly.Add(month, id)
		}
	}

	for day := range sets.SubscriptionDaily {
		for id := range sets.SubscriptionDaily.Get(day) {
			sets.TotalDaily.Add(day, id)
		}
	}
	for day := range sets.OnetimeDaily {
		for id := range sets.OnetimeDaily.Get(day) {
			sets.TotalDaily.Add(day, id)
		}
	}

	return sets
}

func (s *Simulator) expandSubscription(sets *Sets, order domain.Order, dailyCutoff time.Time) {
	cadence := ParseCadence(order.Notes)

	for offset := 0; offset < cadence; offset++ {
		key := period.AddMonths(order.MonthKey, offset)
		if key > sets.AsOfMonth {
			break
		}
		sets.SubscriptionMonthly.Add(key, order.CustomerID)
		for _, vertical := range order.Verticals {
			// Only subscription verticals earn the repeated monthly
			// credit; one-time side-categories on a mixed order do not.
			if s.catalog.IsSubscriptionVertical(vertical) {
				s.categorySet(sets, vertical).Add(key, order.CustomerID)
			}
		}
	}

	end := order.Timestamp.AddDate(0, cadence, 0)
	for day := order.Timestamp; day.Before(end) && !day.After(dailyCutoff); day = day.AddDate(0, 0, 1) {
		sets.SubscriptionDaily.Add(period.DayKey(day), order.CustomerID)
	}
}

func (s *Simulator) expandOnetime(sets *Sets, order domain.Order, dailyCutoff time.Time) {
	month := order.MonthKey
	if month <= sets.AsOfMonth {
		sets.OnetimeMonthly.Add(month, order.CustomerID)
	}

	// A one-time purchase near a month boundary spills activity into the
	// month its coverage window ends in.
	spillMonth := period.MonthKey(order.Timestamp.AddDate(0, 0, s.onetimeWindowDays))
	spills := spillMonth != month && spillMonth <= sets.AsOfMonth

	if spills {
		sets.OnetimeMonthly.Add(spillMonth, order.CustomerID)
	}
	for _, vertical := range order.Verticals {
		set := s.categorySet(sets, vertical)
		if month <= sets.AsOfMonth {
			set.Add(month, order.CustomerID)
		}
		if spills {
			set.Add(spillMonth, order.CustomerID)
		}
	}

	end := order.Timestamp.AddDate(0, 0, s.onetimeWindowDays)
	for day := order.Timestamp; day.Before(end) && !day.After(dailyCutoff); day = day.AddDate(0, 0, 1) {
		sets.OnetimeDaily.Add(period.DayKey(day), order.CustomerID)
	}
}

func (s *Simulator) categorySet(sets *Sets, vertical string) domain.ActiveSet {
	set, ok := sets.CategoryMonthly[vertical]
	if !ok {
		set = make(domain.ActiveSet)
		sets.CategoryMonthly[vertical] = set
	}
	return set
}
