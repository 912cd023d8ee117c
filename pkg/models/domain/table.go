package domain

// TotalColumn is the derived row-sum column name. It is excluded from
// every row-wise aggregate so that recomputing totals stays idempotent.
const TotalColumn = "total"

// Table is a two-dimensional metric table: rows keyed by an index value
// (an ISO date or a version string), columns keyed by name. ISO dates sort
// lexicographically, so the ascending index is also chronological.
//
// Tables are immutable once built: transforms in services/table return new
// tables and never touch their input.
type Table struct {
	index   []string
	columns []string
	cells   map[string]map[string]float64
}

// NewTable returns an empty table. Columns gain their position on first
// Set; rows keep ascending index order regardless of insertion order.
func NewTable() *Table {
	return &Table{cells: make(map[string]map[string]float64)}
}

// Set stores a cell value, registering the index and column on first use.
// It is the only mutator and is intended for table builders; once a table
// has been handed to a consumer it is treated as frozen.
func (t *Table) Set(index, column string, value float64) {
	row, ok := t.cells[index]
	if !ok {
		row = make(map[string]float64)
		t.cells[index] = row
		t.insertIndex(index)
	}
	if _, ok := row[column]; !ok {
		if !t.HasColumn(column) {
			t.columns = append(t.columns, column)
		}
	}
	row[column] = value
}

func (t *Table) insertIndex(index string) {
	at := len(t.index)
	for i, existing := range t.index {
		if index < existing {
			at = i
			break
		}
	}
	t.index = append(t.index, "")
	copy(t.index[at+1:], t.index[at:])
	t.index[at] = index
}

// Index returns the row keys in ascending order.
func (t *Table) Index() []string {
	out := make([]string, len(t.index))
	copy(out, t.index)
	return out
}

// Columns returns the column names in first-seen order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) HasColumn(column string) bool {
	for _, c := range t.columns {
		if c == column {
			return true
		}
	}
	return false
}

// Value returns the cell at (index, column); missing cells read as zero.
func (t *Table) Value(index, column string) float64 {
	return t.cells[index][column]
}

// Column returns one column's values aligned with Index().
func (t *Table) Column(column string) []float64 {
	out := make([]float64, len(t.index))
	for i, idx := range t.index {
		out[i] = t.cells[idx][column]
	}
	return out
}

// RowSum is the sum across all columns for one row, excluding any derived
// total column.
func (t *Table) RowSum(index string) float64 {
	var sum float64
	for _, c := range t.columns {
		if c == TotalColumn {
			continue
		}
		sum += t.cells[index][c]
	}
	return sum
}

// Len reports the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Clone returns a deep copy sharing no state with the receiver.
func (t *Table) Clone() *Table {
	out := NewTable()
	out.index = append(out.index[:0], t.index...)
	out.columns = append(out.columns[:0], t.columns...)
	for idx, row := range t.cells {
		dst := make(map[string]float64, len(row))
		for c, v := range row {
			dst[c] = v
		}
		out.cells[idx] = dst
	}
	return out
}
