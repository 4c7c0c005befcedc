package dataprocessing

import (
	"sort"
	"time"

	"salescli/pkg/contracts/domain"
)

// day truncates t to its UTC calendar date
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyRevenue sums revenue per (region, UTC day), sorted by region and
// then date. Undated records and records with an empty region are skipped.
func DailyRevenue(records []domain.SalesRecord) []domain.DailyRegionRevenue {
	type key struct {
		region string
		date   time.Time
	}

	sums := make(map[key]*revenueSum)
	keys := make([]key, 0)
	for _, r := range records {
		if !r.Dated || r.Region == "" {
			continue
		}
		k := key{region: r.Region, date: day(r.Date)}
		s, ok := sums[k]
		if !ok {
			s = &revenueSum{}
			sums[k] = s
			keys = append(keys, k)
		}
		s.add(r.Revenue)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].region != keys[j].region {
			return keys[i].region < keys[j].region
		}
		return keys[i].date.Before(keys[j].date)
	})

	daily := make([]domain.DailyRegionRevenue, 0, len(keys))
	for _, k := range keys {
		daily = append(daily, domain.DailyRegionRevenue{
			Region:  k.region,
			Date:    k.date,
			Revenue: sums[k].value(),
		})
	}
	return daily
}

// RollingSeries computes, for each day of one region's ascending daily
// revenue, the mean over all days in (day - window, day]. The window spans
// calendar time, so missing days shrink the sample rather than widening the
// span. Missing daily sums are left out of the mean; a window holding none
// yields a missing mean.
func RollingSeries(days []domain.DailyRegionRevenue, window time.Duration) []domain.RollingPoint {
	points := make([]domain.RollingPoint, 0, len(days))
	lo := 0
	for i, d := range days {
		if window <= 0 {
			points = append(points, domain.RollingPoint{Date: d.Date, Mean: domain.Null()})
			continue
		}

		start := d.Date.Add(-window)
		for lo < i && !days[lo].Date.After(start) {
			lo++
		}

		var s revenueSum
		for _, w := range days[lo : i+1] {
			s.add(w.Revenue)
		}
		mean := s.value()
		if mean.Valid {
			mean = domain.Float(mean.Float64 / float64(s.n))
		}
		points = append(points, domain.RollingPoint{Date: d.Date, Mean: mean})
	}
	return points
}

// RollingRevenue returns, for every distinct non-empty region, the trailing
// mean at that region's last dated day. Regions without dated records map
// to a missing value.
func RollingRevenue(records []domain.SalesRecord, window time.Duration) map[string]domain.NullFloat {
	out := make(map[string]domain.NullFloat)
	for _, r := range records {
		if r.Region != "" {
			out[r.Region] = domain.Null()
		}
	}

	daily := DailyRevenue(records)
	for start := 0; start < len(daily); {
		end := start
		for end < len(daily) && daily[end].Region == daily[start].Region {
			end++
		}

		series := RollingSeries(daily[start:end], window)
		out[daily[start].Region] = series[len(series)-1].Mean
		start = end
	}
	return out
}
