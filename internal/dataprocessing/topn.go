package dataprocessing

import (
	"sort"

	"salescli/pkg/contracts/domain"
)

// TopProducts groups records by product, sums revenue and returns the n
// highest groups in descending order. Equal sums keep the order in which
// the products first appeared; missing sums sort last. Records with an
// empty product are not grouped.
func TopProducts(records []domain.SalesRecord, n int) []domain.ProductRevenue {
	if n <= 0 {
		return []domain.ProductRevenue{}
	}

	order := make([]string, 0)
	sums := make(map[string]*revenueSum)
	for _, r := range records {
		if r.Product == "" {
			continue
		}
		s, ok := sums[r.Product]
		if !ok {
			s = &revenueSum{}
			sums[r.Product] = s
			order = append(order, r.Product)
		}
		s.add(r.Revenue)
	}

	groups := make([]domain.ProductRevenue, 0, len(order))
	for _, product := range order {
		groups = append(groups, domain.ProductRevenue{
			Product: product,
			Revenue: sums[product].value(),
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return revenueGreater(groups[i].Revenue, groups[j].Revenue)
	})

	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

// revenueGreater orders valid values descending with missing values last
func revenueGreater(a, b domain.NullFloat) bool {
	if !a.Valid || !b.Valid {
		return a.Valid && !b.Valid
	}
	return a.Float64 > b.Float64
}
