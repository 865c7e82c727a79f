// Package orders computes the month-over-month delivered-order tables and the
// vertical-mapping QA summary from normalized orders.
package orders

import (
	"sort"

	"go.uber.org/zap"

	"github.com/dtc-labs/orderlens/internal/domain"
	"github.com/dtc-labs/orderlens/internal/period"
	"github.com/dtc-labs/orderlens/pkg/config"
)

type Service struct {
	catalog config.CatalogConfig
	log     *zap.Logger
}

func NewService(catalog config.CatalogConfig, log *zap.Logger) *Service {
	return &Service{catalog: catalog, log: log}
}

// Mom builds the headline and per-vertical month-over-month tables plus the
// QA summary. The snapshot month (month of the latest delivered order) is
// flagged partial and gets a pacing projection whose denominator is the
// largest day-of-month seen among that month's orders.
func (s *Service) Mom(orders []domain.Order) ([]domain.MomOrdersRow, []domain.MomOrdersByVerticalRow, domain.OrdersQA) {
	qa := domain.OrdersQA{HeadlineVsVerticals: []domain.HeadlineVsVerticalsRow{}}
	if len(orders) == 0 {
		return []domain.MomOrdersRow{}, []domain.MomOrdersByVerticalRow{}, qa
	}

	snapshotMonth := orders[0].MonthKey
	for _, order := range orders {
		if order.MonthKey > snapshotMonth {
			snapshotMonth = order.MonthKey
		}
	}

	monthSet := make(map[string]struct{})
	for _, order := range orders {
		monthSet[order.MonthKey] = struct{}{}
	}
	months := make([]string, 0, len(monthSet))
	for month := range monthSet {
		months = append(months, month)
	}
	sort.Strings(months)

	ordersByMonth := make(map[string]int, len(months))
	pacingByMonth := make(map[string]int, len(months))
	for _, order := range orders {
		ordersByMonth[order.MonthKey]++
		if elapsed := daysElapsed(order, snapshotMonth); elapsed > pacingByMonth[order.MonthKey] {
			pacingByMonth[order.MonthKey] = elapsed
		}
	}

	mom := make([]domain.MomOrdersRow, 0, len(months))
	for i, month := range months {
		row := domain.MomOrdersRow{
			Month:  month,
			Orders: ordersByMonth[month],
			Ado:    float64(ordersByMonth[month]) / float64(period.DaysInMonth(month)),
		}
		if i > 0 {
			prev := ordersByMonth[months[i-1]]
			diff := row.Orders - prev
			row.MomAbs = &diff
			if prev != 0 {
				pct := float64(diff) / float64(prev)
				row.MomPct = &pct
			}
		}
		if month == snapshotMonth {
			row.IsPartial = 1
			denominator := pacingByMonth[month]
			if denominator == 0 {
				denominator = period.DaysInMonth(month)
			}
			pacing := float64(row.Orders) / float64(denominator)
			row.AdoPacing = &pacing
		}
		mom = append(mom, row)
	}

	// Per-vertical grid is zero-filled over every configured vertical so the
	// dashboard gets a dense series even for verticals with no orders.
	type cell struct {
		orders int
		pacing int
	}
	grid := make(map[string]map[string]cell, len(s.catalog.Verticals))
	for _, vertical := range s.catalog.Verticals {
		grid[vertical] = make(map[string]cell, len(months))
	}
	for _, order := range orders {
		elapsed := daysElapsed(order, snapshotMonth)
		for _, vertical := range order.Verticals {
			row, ok := grid[vertical]
			if !ok {
				row = make(map[string]cell, len(months))
				grid[vertical] = row
			}
			c := row[order.MonthKey]
			c.orders++
			if elapsed > c.pacing {
				c.pacing = elapsed
			}
			row[order.MonthKey] = c
		}
	}

	verticals := make([]string, 0, len(grid))
	for vertical := range grid {
		verticals = append(verticals, vertical)
	}
	sort.Strings(verticals)

	byVertical := make([]domain.MomOrdersByVerticalRow, 0, len(verticals)*len(months))
	for _, vertical := range verticals {
		for i, month := range months {
			c := grid[vertical][month]
			row := domain.MomOrdersByVerticalRow{
				Month:    month,
				Vertical: vertical,
				Orders:   c.orders,
				Ado:      float64(c.orders) / float64(period.DaysInMonth(month)),
			}
			if i > 0 {
				prev := grid[vertical][months[i-1]].orders
				diff := c.orders - prev
				row.MomAbs = &diff
				if prev != 0 {
					pct := float64(diff) / float64(prev)
					row.MomPct = &pct
				}
			}
			if month == snapshotMonth {
				row.IsPartial = 1
				denominator := c.pacing
				if denominator == 0 {
					denominator = period.DaysInMonth(month)
				}
				pacing := float64(c.orders) / float64(denominator)
				row.AdoPacing = &pacing
			}
			byVertical = append(byVertical, row)
		}
	}

	noVertical, multiVertical := 0, 0
	for _, order := range orders {
		switch {
		case len(order.Verticals) == 0:
			noVertical++
		case len(order.Verticals) > 1:
			multiVertical++
		}
	}
	qa.NoVerticalPct = 100 * float64(noVertical) / float64(len(orders))
	qa.MultiVerticalPct = 100 * float64(multiVertical) / float64(len(orders))
	qa.UnknownCount = noVertical

	for _, month := range months {
		verticalSum := 0
		for _, vertical := range verticals {
			verticalSum += grid[vertical][month].orders
		}
		qa.HeadlineVsVerticals = append(qa.HeadlineVsVerticals, domain.HeadlineVsVerticalsRow{
			Month:       month,
			Headline:    ordersByMonth[month],
			VerticalSum: verticalSum,
			Delta:       verticalSum - ordersByMonth[month],
		})
	}

	if s.log != nil {
		s.log.Debug("mom tables built",
			zap.String("snapshot_month", snapshotMonth),
			zap.Int("months", len(months)),
			zap.Int("unknown_orders", noVertical),
		)
	}
	return mom, byVertical, qa
}

// daysElapsed is the pacing contribution of one order: the day of month for
// snapshot-month orders, the full month length otherwise.
func daysElapsed(order domain.Order, snapshotMonth string) int {
	if order.MonthKey == snapshotMonth {
		return order.Timestamp.Day()
	}
	return period.DaysInMonth(order.MonthKey)
}
