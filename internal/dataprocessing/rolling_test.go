package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salescli/pkg/contracts/domain"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dated(region, d string, revenue float64) domain.SalesRecord {
	return domain.SalesRecord{Date: date(d), Dated: true, Region: region, Product: "P", Revenue: domain.Float(revenue)}
}

func TestDailyRevenue(t *testing.T) {
	records := []domain.SalesRecord{
		dated("West", "2024-01-02", 1),
		dated("East", "2024-01-01", 20),
		{Date: date("2024-01-01").Add(15 * time.Hour), Dated: true, Region: "East", Revenue: domain.Float(5)},
		dated("East", "2023-12-31", 2),
		{Region: "East", Revenue: domain.Float(100)},
		dated("", "2024-01-01", 100),
	}

	daily := DailyRevenue(records)

	require.Len(t, daily, 3)
	assert.Equal(t, domain.DailyRegionRevenue{Region: "East", Date: date("2023-12-31"), Revenue: domain.Float(2)}, daily[0])
	assert.Equal(t, domain.DailyRegionRevenue{Region: "East", Date: date("2024-01-01"), Revenue: domain.Float(25)}, daily[1])
	assert.Equal(t, domain.DailyRegionRevenue{Region: "West", Date: date("2024-01-02"), Revenue: domain.Float(1)}, daily[2])
}

func TestDailyRevenue_GroupsByUTCDay(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	cet := time.FixedZone("CET", 60*60)
	records := []domain.SalesRecord{
		// all three instants fall on 2024-01-02 UTC
		{Date: time.Date(2024, 1, 1, 23, 0, 0, 0, est), Dated: true, Region: "East", Revenue: domain.Float(10)},
		{Date: time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC), Dated: true, Region: "East", Revenue: domain.Float(20)},
		{Date: time.Date(2024, 1, 3, 0, 30, 0, 0, cet), Dated: true, Region: "East", Revenue: domain.Float(4)},
		{Date: time.Date(2024, 1, 3, 19, 0, 0, 0, est), Dated: true, Region: "East", Revenue: domain.Float(6)},
	}

	daily := DailyRevenue(records)

	require.Len(t, daily, 2)
	assert.Equal(t, domain.DailyRegionRevenue{Region: "East", Date: date("2024-01-02"), Revenue: domain.Float(34)}, daily[0])
	assert.Equal(t, domain.DailyRegionRevenue{Region: "East", Date: date("2024-01-04"), Revenue: domain.Float(6)}, daily[1])
}

func TestRollingSeries_TimeBasedWindow(t *testing.T) {
	days := []domain.DailyRegionRevenue{
		{Region: "East", Date: date("2024-01-01"), Revenue: domain.Float(10)},
		{Region: "East", Date: date("2024-01-03"), Revenue: domain.Float(20)},
		{Region: "East", Date: date("2024-01-07"), Revenue: domain.Float(30)},
		{Region: "East", Date: date("2024-01-08"), Revenue: domain.Float(40)},
		{Region: "East", Date: date("2024-01-20"), Revenue: domain.Float(50)},
	}

	series := RollingSeries(days, DefaultWindow)

	require.Len(t, series, 5)
	assert.Equal(t, 10.0, series[0].Mean.Float64)
	assert.Equal(t, 15.0, series[1].Mean.Float64)
	assert.Equal(t, 20.0, series[2].Mean.Float64)
	// 2024-01-01 falls exactly on the open edge of (01-01, 01-08]
	assert.Equal(t, 30.0, series[3].Mean.Float64)
	// a gap empties the window down to the current day
	assert.Equal(t, 50.0, series[4].Mean.Float64)
}

func TestRollingSeries_SkipsMissingDailySums(t *testing.T) {
	days := []domain.DailyRegionRevenue{
		{Date: date("2024-01-01"), Revenue: domain.Float(6)},
		{Date: date("2024-01-02"), Revenue: domain.Null()},
	}

	series := RollingSeries(days, DefaultWindow)
	assert.Equal(t, domain.Float(6), series[1].Mean)

	onlyMissing := RollingSeries(days[1:], DefaultWindow)
	assert.False(t, onlyMissing[0].Mean.Valid)
}

func TestRollingSeries_ZeroWindow(t *testing.T) {
	days := []domain.DailyRegionRevenue{{Date: date("2024-01-01"), Revenue: domain.Float(6)}}

	for _, w := range []time.Duration{0, -time.Hour} {
		series := RollingSeries(days, w)
		assert.False(t, series[0].Mean.Valid)
	}
}

func TestRollingSeries_OneDayWindow(t *testing.T) {
	days := []domain.DailyRegionRevenue{
		{Date: date("2024-01-01"), Revenue: domain.Float(6)},
		{Date: date("2024-01-02"), Revenue: domain.Float(8)},
	}

	series := RollingSeries(days, 24*time.Hour)
	assert.Equal(t, 8.0, series[1].Mean.Float64)
}

func TestRollingRevenue_UniformWeek(t *testing.T) {
	var records []domain.SalesRecord
	for d := 1; d <= 7; d++ {
		records = append(records, domain.SalesRecord{
			Date:    time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC),
			Dated:   true,
			Region:  "North",
			Revenue: domain.Float(12.5),
		})
	}

	got := RollingRevenue(records, DefaultWindow)
	assert.Equal(t, map[string]domain.NullFloat{"North": domain.Float(12.5)}, got)
}

func TestRollingRevenue_EightDaysDropsTheFirst(t *testing.T) {
	var records []domain.SalesRecord
	for d := 1; d <= 8; d++ {
		records = append(records, domain.SalesRecord{
			Date:    time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC),
			Dated:   true,
			Region:  "North",
			Revenue: domain.Float(float64(d)),
		})
	}

	got := RollingRevenue(records, DefaultWindow)
	// mean of days 2..8
	assert.Equal(t, 5.0, got["North"].Float64)
}

func TestRollingRevenue_PerRegion(t *testing.T) {
	records := []domain.SalesRecord{
		dated("East", "2024-01-01", 25),
		dated("East", "2024-01-08", 10),
		dated("West", "2024-01-05", 4),
		dated("West", "2024-01-06", 8),
		{Region: "South", Revenue: domain.Float(3)},
		{Region: "", Revenue: domain.Float(3)},
	}

	got := RollingRevenue(records, DefaultWindow)

	assert.Len(t, got, 3)
	assert.Equal(t, domain.Float(10), got["East"])
	assert.Equal(t, domain.Float(6), got["West"])
	assert.False(t, got["South"].Valid, "region without dated rows is missing")
}

func TestRollingRevenue_InfinitiesCancelToMissing(t *testing.T) {
	records := []domain.SalesRecord{
		{Date: date("2024-01-01"), Dated: true, Region: "East", Revenue: domain.Float(math.Inf(1))},
		{Date: date("2024-01-02"), Dated: true, Region: "East", Revenue: domain.Float(math.Inf(-1))},
	}

	got := RollingRevenue(records, DefaultWindow)
	assert.False(t, got["East"].Valid)
}

func TestRollingRevenue_Empty(t *testing.T) {
	assert.Empty(t, RollingRevenue(nil, DefaultWindow))
}
