package table

import (
	"math"
	"testing"
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usageRow(weekEnd string, osName string, hits int) domain.UsageRow {
	end, err := time.Parse("2006-01-02", weekEnd)
	if err != nil {
		panic(err)
	}
	return domain.UsageRow{
		WeekEnd: end,
		OSName:  osName,
		Hits:    hits,
	}
}

func TestPivot_SumsGroupsAndFillsMissingCells(t *testing.T) {
	rows := []domain.UsageRow{
		usageRow("2024-01-07", "Rocky Linux", 10),
		usageRow("2024-01-07", "Rocky Linux", 5),
		usageRow("2024-01-07", "AlmaLinux", 3),
		usageRow("2024-01-14", "Rocky Linux", 7),
		// no AlmaLinux entry for the second week
	}

	got := Pivot(rows, Hits, ByWeekEnd, ByOSName, 0)

	require.Equal(t, []string{"2024-01-07", "2024-01-14"}, got.Index())
	assert.Equal(t, float64(15), got.Value("2024-01-07", "Rocky Linux"))
	assert.Equal(t, float64(3), got.Value("2024-01-07", "AlmaLinux"))
	assert.Equal(t, float64(7), got.Value("2024-01-14", "Rocky Linux"))
	assert.Equal(t, float64(0), got.Value("2024-01-14", "AlmaLinux"))
}

func TestPivot_ColumnOrderIsFirstSeen(t *testing.T) {
	rows := []domain.UsageRow{
		usageRow("2024-01-07", "Rocky Linux", 1),
		usageRow("2024-01-07", "AlmaLinux", 1),
		usageRow("2024-01-14", "CentOS Stream", 1),
		usageRow("2024-01-14", "AlmaLinux", 1),
	}

	got := Pivot(rows, Hits, ByWeekEnd, ByOSName, 0)

	assert.Equal(t, []string{"Rocky Linux", "AlmaLinux", "CentOS Stream"}, got.Columns())
}

func TestPivot_IndexSortedRegardlessOfInputOrder(t *testing.T) {
	rows := []domain.UsageRow{
		usageRow("2024-02-04", "Rocky Linux", 1),
		usageRow("2024-01-07", "Rocky Linux", 1),
		usageRow("2024-01-21", "Rocky Linux", 1),
	}

	got := Pivot(rows, Hits, ByWeekEnd, ByOSName, 0)

	assert.Equal(t, []string{"2024-01-07", "2024-01-21", "2024-02-04"}, got.Index())
}

func TestAddTotal_SumsRowAndIsIdempotent(t *testing.T) {
	src := domain.NewTable()
	src.Set("2024-01-07", "Rocky Linux", 10)
	src.Set("2024-01-07", "AlmaLinux", 30)

	once := AddTotal(src)
	twice := AddTotal(once)

	assert.Equal(t, float64(40), once.Value("2024-01-07", domain.TotalColumn))
	assert.Equal(t, float64(40), twice.Value("2024-01-07", domain.TotalColumn))

	// the input is never mutated
	assert.False(t, src.HasColumn(domain.TotalColumn))
}

func TestShare_RowsSumToOne(t *testing.T) {
	src := domain.NewTable()
	src.Set("2024-01-07", "Rocky Linux", 30)
	src.Set("2024-01-07", "AlmaLinux", 50)
	src.Set("2024-01-07", "CentOS Stream", 20)
	src.Set("2024-01-14", "Rocky Linux", 1)
	src.Set("2024-01-14", "AlmaLinux", 0)
	src.Set("2024-01-14", "CentOS Stream", 3)

	for i, idx := range src.Index() {
		var sum float64
		for _, col := range src.Columns() {
			sum += Share(src, col)[i]
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "row %s", idx)
	}
}

func TestShare_IgnoresStoredTotalColumn(t *testing.T) {
	src := domain.NewTable()
	src.Set("2024-01-07", "Rocky Linux", 25)
	src.Set("2024-01-07", "AlmaLinux", 75)
	withTotal := AddTotal(src)

	got := Share(withTotal, "Rocky Linux")

	require.Len(t, got, 1)
	assert.InDelta(t, 0.25, got[0], 1e-9)
}

func TestShare_ZeroTotalYieldsNaN(t *testing.T) {
	src := domain.NewTable()
	src.Set("2024-01-07", "Rocky Linux", 0)
	src.Set("2024-01-07", "AlmaLinux", 0)

	got := Share(src, "Rocky Linux")

	require.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0]))
}

func TestShares_ConvertsWholeTableAndDropsTotal(t *testing.T) {
	src := domain.NewTable()
	src.Set("2024-01-07", "Rocky Linux", 40)
	src.Set("2024-01-07", "AlmaLinux", 60)
	withTotal := AddTotal(src)

	got := Shares(withTotal)

	assert.False(t, got.HasColumn(domain.TotalColumn))
	assert.InDelta(t, 0.4, got.Value("2024-01-07", "Rocky Linux"), 1e-9)
	assert.InDelta(t, 0.6, got.Value("2024-01-07", "AlmaLinux"), 1e-9)
}
