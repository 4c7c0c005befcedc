package dataprocessing

import (
	"salescli/pkg/contracts/domain"
)

// ComputeRevenue sets Revenue = Units * Price on every record in place.
// A NaN product (0 * Inf) is stored as a missing value.
func ComputeRevenue(records []domain.SalesRecord) {
	for i := range records {
		records[i].Revenue = domain.Float(records[i].Units * records[i].Price)
	}
}

// revenueSum accumulates revenue, skipping missing values
type revenueSum struct {
	total float64
	n     int
}

func (s *revenueSum) add(v domain.NullFloat) {
	if !v.Valid {
		return
	}
	s.total += v.Float64
	s.n++
}

// value is missing when nothing valid was added or the total is NaN (Inf + -Inf)
func (s revenueSum) value() domain.NullFloat {
	if s.n == 0 {
		return domain.Null()
	}
	return domain.Float(s.total)
}
