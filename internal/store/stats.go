package store

import (
	"context"
	"fmt"

	"sms-ledger/internal/models"
)

const monthlyStats = `
SELECT SUBSTR(t.datetime, 1, 7) AS month, c.category,
       SUM(t.amount), COALESCE(SUM(r.total), 0)
FROM transactions t
JOIN categories c ON c.category_id = t.category_id
LEFT JOIN (
    SELECT transaction_id, SUM(amount) AS total FROM reimbursements GROUP BY transaction_id
) r ON r.transaction_id = t.transaction_id
GROUP BY SUBSTR(t.datetime, 1, 7), c.category
ORDER BY month DESC, c.category ASC`

// MonthlyStats aggregates spending per month and category, net of reimbursements.
func (s *Store) MonthlyStats(ctx context.Context) ([]models.MonthlyStat, error) {
	rows, err := s.db.QueryContext(ctx, monthlyStats)
	if err != nil {
		return nil, fmt.Errorf("monthly stats: %w", err)
	}
	defer rows.Close()

	var stats []models.MonthlyStat
	for rows.Next() {
		var st models.MonthlyStat
		if err := rows.Scan(&st.Month, &st.Category, &st.TotalSpent, &st.TotalReimbursed); err != nil {
			return nil, fmt.Errorf("scan monthly stat: %w", err)
		}
		st.TotalSpent = st.TotalSpent.Round(2)
		st.TotalReimbursed = st.TotalReimbursed.Round(2)
		st.NetAmount = st.TotalSpent.Sub(st.TotalReimbursed)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
