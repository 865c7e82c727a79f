package domain

// Segment labels an active-customer series.
type Segment string

const (
	SegmentSubscribers Segment = "subscribers"
	SegmentOnetime     Segment = "onetime"
	SegmentTotal       Segment = "total"
)

// Dimension scopes a cohort table.
type Dimension string

const (
	DimensionOverall  Dimension = "overall"
	DimensionCategory Dimension = "category"
)

// Metric distinguishes any-category from same-category repurchase behaviour.
type Metric string

const (
	MetricAny  Metric = "any"
	MetricSame Metric = "same"
)

// MomOrdersRow is one month of headline delivered-order counts.
// MomAbs and MomPct are nil for the first observed month; AdoPacing is only
// set for the partial trailing month.
type MomOrdersRow struct {
	Month     string   `json:"month"`
	Orders    int      `json:"orders"`
	MomAbs    *int     `json:"orders_mom_abs"`
	MomPct    *float64 `json:"orders_mom_pct"`
	Ado       float64  `json:"ado"`
	AdoPacing *float64 `json:"ado_pacing"`
	IsPartial int      `json:"is_partial"`
}

// MomOrdersByVerticalRow is the per-vertical variant of MomOrdersRow.
type MomOrdersByVerticalRow struct {
	Month     string   `json:"month"`
	Vertical  string   `json:"vertical"`
	Orders    int      `json:"orders"`
	MomAbs    *int     `json:"orders_mom_abs"`
	MomPct    *float64 `json:"orders_mom_pct"`
	Ado       float64  `json:"ado_vertical"`
	AdoPacing *float64 `json:"ado_vertical_pacing"`
	IsPartial int      `json:"is_partial"`
}

// HeadlineVsVerticalsRow reconciles headline order counts against the sum of
// per-vertical exploded counts; Delta >= 0 whenever multi-vertical orders exist.
type HeadlineVsVerticalsRow struct {
	Month       string `json:"month"`
	Headline    int    `json:"headline"`
	VerticalSum int    `json:"vertical_sum"`
	Delta       int    `json:"delta"`
}

// OrdersQA summarizes data-quality counters for the normalized orders.
type OrdersQA struct {
	NoVerticalPct       float64                  `json:"noVerticalPct"`
	MultiVerticalPct    float64                  `json:"multiVerticalPct"`
	UnknownCount        int                      `json:"unknownCount"`
	HeadlineVsVerticals []HeadlineVsVerticalsRow `json:"headlineVsVerticals"`
}

// ChurnRow is one month-over-month transition for a segment.
type ChurnRow struct {
	Month       string  `json:"month"`
	Label       Segment `json:"label"`
	PrevActive  int     `json:"prevActive"`
	Retained    int     `json:"retained"`
	Churned     int     `json:"churned"`
	ChurnRate   float64 `json:"churnRate"`
	NewActive   int     `json:"newActive"`
	Reactivated int     `json:"reactivated"`
}

// ChurnByCategoryRow is one month-over-month transition for a vertical.
type ChurnByCategoryRow struct {
	Month       string  `json:"month"`
	Category    string  `json:"category"`
	PrevActive  int     `json:"prevActive"`
	Retained    int     `json:"retained"`
	Churned     int     `json:"churned"`
	ChurnRate   float64 `json:"churnRate"`
	NewActive   int     `json:"newActive"`
	Reactivated int     `json:"reactivated"`
}

// DailyActiveRow counts distinct active customers on one calendar day.
type DailyActiveRow struct {
	Date        string `json:"date"`
	Subscribers int    `json:"subscribers"`
	Onetime     int    `json:"onetime"`
	Total       int    `json:"total"`
}

// DailyRetentionRow is one day-over-day transition for a segment.
type DailyRetentionRow struct {
	Date          string  `json:"date"`
	Label         Segment `json:"label"`
	PrevActive    int     `json:"prevActive"`
	Retained      int     `json:"retained"`
	Churned       int     `json:"churned"`
	ChurnRate     float64 `json:"churnRate"`
	RetentionRate float64 `json:"retentionRate"`
	NewActive     int     `json:"newActive"`
	Reactivated   int     `json:"reactivated"`
}

// WeeklyRetentionRow is one week-over-week transition built from Monday-start
// weekly buckets of the daily active sets.
type WeeklyRetentionRow struct {
	Week          string  `json:"week"`
	Label         Segment `json:"label"`
	PrevActive    int     `json:"prevActive"`
	Retained      int     `json:"retained"`
	Churned       int     `json:"churned"`
	RetentionRate float64 `json:"retentionRate"`
}

// MonthlyActiveRow counts distinct active customers per month and segment.
type MonthlyActiveRow struct {
	Month       string `json:"month"`
	Subscribers int    `json:"subscribers"`
	Onetime     int    `json:"onetime"`
	Total       int    `json:"total"`
}

// ChurnSummary bundles every consecutive-period table derived from the
// simulated active sets.
type ChurnSummary struct {
	Months          []string             `json:"months"`
	Overview        []ChurnRow           `json:"overview"`
	ByCategory      []ChurnByCategoryRow `json:"byCategory"`
	Daily           []DailyActiveRow     `json:"daily"`
	DailyRetention  []DailyRetentionRow  `json:"dailyRetention"`
	WeeklyRetention []WeeklyRetentionRow `json:"weeklyRetention"`
	MonthlyActive   []MonthlyActiveRow   `json:"monthlyActive"`
}

// RetentionRow is cohort retention at one offset. Retention is always a raw
// fraction in [0,1]; percent formatting happens only at export boundaries.
type RetentionRow struct {
	CohortMonth string    `json:"cohort_month"`
	Dimension   Dimension `json:"dimension"`
	FirstValue  string    `json:"first_value"`
	M           int       `json:"m"`
	Metric      Metric    `json:"metric"`
	CohortSize  int       `json:"cohort_size"`
	Retention   float64   `json:"retention"`
}

// LtvRow is cumulative per-user revenue for a cohort at one offset.
type LtvRow struct {
	CohortType  string    `json:"cohort_type"`
	CohortMonth string    `json:"cohort_month"`
	Dimension   Dimension `json:"dimension"`
	FirstValue  string    `json:"first_value"`
	M           int       `json:"m"`
	Metric      Metric    `json:"metric"`
	Measure     string    `json:"measure"`
	CohortSize  int       `json:"cohort_size"`
	LtvPerUser  float64   `json:"ltv_per_user"`
}

// SurvivalRow is subscriber survival for a category cohort at one offset.
type SurvivalRow struct {
	CohortMonth  string  `json:"cohort_month"`
	Category     string  `json:"category"`
	M            int     `json:"m"`
	CohortSize   int     `json:"cohort_size"`
	SurvivalRate float64 `json:"survival_rate"`
}

// WaterfallRow reconciles one month transition of an active base.
// EndActive == StartActive + NewActive + Reactivated - Churned.
type WaterfallRow struct {
	Month       string `json:"month"`
	Category    string `json:"category"`
	StartActive int    `json:"start_active"`
	NewActive   int    `json:"new_active"`
	Reactivated int    `json:"reactivated"`
	Churned     int    `json:"churned"`
	EndActive   int    `json:"end_active"`
}

// CatalogueRow is per-SKU unit economics.
type CatalogueRow struct {
	Category    string  `json:"category"`
	SKU         string  `json:"sku"`
	Units       int     `json:"units"`
	AvgPrice    float64 `json:"avgPrice"`
	Revenue     float64 `json:"revenue"`
	CogsPerUnit float64 `json:"cogsPerUnit"`
	CogsTotal   float64 `json:"cogsTotal"`
	TakeRate    float64 `json:"takeRate"`
	MarginLabel string  `json:"marginLabel"`
}

// CatalogueTotals aggregates the catalogue rows.
type CatalogueTotals struct {
	Units    int     `json:"units"`
	Revenue  float64 `json:"revenue"`
	Cogs     float64 `json:"cogs"`
	TakeRate float64 `json:"takeRate"`
}

// CatalogueSummary is the per-SKU economics table plus totals.
type CatalogueSummary struct {
	Rows   []CatalogueRow  `json:"rows"`
	Totals CatalogueTotals `json:"totals"`
}

// OrdersResult is the MoM-focused output consumed by the orders dashboard
// and the spreadsheet export.
type OrdersResult struct {
	MomOrders           []MomOrdersRow           `json:"momOrders"`
	MomOrdersByVertical []MomOrdersByVerticalRow `json:"momOrdersByVertical"`
	QA                  OrdersQA                 `json:"qa"`
	Churn               ChurnSummary             `json:"churn"`
}

// Result is the full analytics output: a pure function of the input orders.
type Result struct {
	AsOfMonth string         `json:"asOfMonth"`
	Churn     ChurnSummary   `json:"churn"`
	Retention []RetentionRow `json:"retention"`
	Ltv       []LtvRow       `json:"ltv"`
	Survival  []SurvivalRow  `json:"survival"`
	Waterfall []WaterfallRow `json:"waterfall"`
}

// ActiveUsersRow is one month of the external active-users dataset.
type ActiveUsersRow struct {
	Month             string `json:"month"`
	ActiveSubscribers int    `json:"active_subscribers"`
	ActiveOnetime     int    `json:"active_onetime"`
	ActiveTotal       int    `json:"active_total"`
	IsFutureVsToday   int    `json:"is_future_vs_today"`
}
