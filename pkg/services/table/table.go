// Package table provides the generic pivot and aggregation transforms
// shared by every canonical table the pipeline produces. All operations
// are pure: inputs are never mutated.
package table

import (
	"math"

	"github.com/el-tools/elstats/pkg/models/domain"
)

// Field selects the index or column key for one usage row.
type Field func(domain.UsageRow) string

// Value selects the metric summed into each cell.
type Value func(domain.UsageRow) float64

// ByWeekEnd keys rows by their observation window's end date.
func ByWeekEnd(r domain.UsageRow) string { return r.WeekEnd.Format("2006-01-02") }

// ByOSName keys rows by distribution name.
func ByOSName(r domain.UsageRow) string { return r.OSName }

// ByOSVersion keys rows by distribution version.
func ByOSVersion(r domain.UsageRow) string { return r.OSVersion }

// Hits is the system-count metric of the countme dataset.
func Hits(r domain.UsageRow) float64 { return float64(r.Hits) }

// Pivot groups rows by (index, column), sums value within each group and
// lays the result out as an index-by-column table. Missing combinations
// read as fill. Columns appear in first-seen order over the input rows;
// the row index is ascending.
func Pivot(rows []domain.UsageRow, value Value, index, column Field, fill float64) *domain.Table {
	type cell struct{ idx, col string }
	sums := make(map[cell]float64)
	var indexes, columns []string
	seenIdx := make(map[string]struct{})
	seenCol := make(map[string]struct{})

	for _, r := range rows {
		c := cell{idx: index(r), col: column(r)}
		sums[c] += value(r)
		if _, ok := seenIdx[c.idx]; !ok {
			seenIdx[c.idx] = struct{}{}
			indexes = append(indexes, c.idx)
		}
		if _, ok := seenCol[c.col]; !ok {
			seenCol[c.col] = struct{}{}
			columns = append(columns, c.col)
		}
	}

	t := domain.NewTable()
	for _, idx := range indexes {
		for _, col := range columns {
			if v, ok := sums[cell{idx: idx, col: col}]; ok {
				t.Set(idx, col, v)
			} else {
				t.Set(idx, col, fill)
			}
		}
	}
	return t
}

// AddTotal returns a copy of t with a total column holding each row's sum
// across the distribution columns. An existing total column is overwritten
// from scratch, so applying AddTotal twice changes nothing.
func AddTotal(t *domain.Table) *domain.Table {
	out := t.Clone()
	for _, idx := range out.Index() {
		out.Set(idx, domain.TotalColumn, out.RowSum(idx))
	}
	return out
}

// Share returns column's per-row fraction of the row total, aligned with
// t.Index(). The total is always recomputed from the distribution columns,
// never read from a stored total. A zero row total yields NaN.
func Share(t *domain.Table, column string) []float64 {
	out := make([]float64, 0, t.Len())
	for _, idx := range t.Index() {
		total := t.RowSum(idx)
		if total == 0 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, t.Value(idx, column)/total)
	}
	return out
}

// Shares converts every distribution column of t to its per-row share.
// A stored total column is dropped; shares of a share table are not a
// meaningful operation.
func Shares(t *domain.Table) *domain.Table {
	out := domain.NewTable()
	for _, idx := range t.Index() {
		total := t.RowSum(idx)
		for _, col := range t.Columns() {
			if col == domain.TotalColumn {
				continue
			}
			if total == 0 {
				out.Set(idx, col, math.NaN())
				continue
			}
			out.Set(idx, col, t.Value(idx, col)/total)
		}
	}
	return out
}
