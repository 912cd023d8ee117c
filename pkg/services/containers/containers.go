// Package containers turns the DockerHub cumulative pull export into a
// per-period table of pull deltas per distribution.
package containers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/el-tools/elstats/pkg/services/config"
)

const datasetName = "dockerhub"

const dateLayout = "2006-01-02"

// Load parses the cached pull-count CSV and aggregates it into one column
// per group. Counters in the source are cumulative, so values are
// differenced day-over-day and the first row, which has no predecessor,
// is dropped. A group column missing from the source is a SchemaError.
func Load(path string, groups []config.ContainerGroup) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, groups)
}

func parse(r io.Reader, groups []config.ContainerGroup) (*domain.Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, &domain.ParseError{Dataset: datasetName, Line: 1, Err: err}
	}
	if len(header) < 2 {
		return nil, &domain.ParseError{Dataset: datasetName, Line: 1,
			Err: fmt.Errorf("expected a date column plus counters, got %d columns", len(header))}
	}

	col := make(map[string]int, len(header))
	for i, name := range header[1:] {
		col[name] = i + 1
	}
	for _, g := range groups {
		for _, c := range g.Columns {
			if _, ok := col[c]; !ok {
				return nil, &domain.SchemaError{Dataset: datasetName, Column: c}
			}
		}
	}

	type observation struct {
		date   time.Time
		counts []int64
	}
	var obs []observation

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Dataset: datasetName, Line: line, Err: err}
		}

		date, err := time.Parse(dateLayout, record[0])
		if err != nil {
			return nil, &domain.ParseError{Dataset: datasetName, Line: line,
				Err: fmt.Errorf("date: %w", err)}
		}

		counts := make([]int64, len(record)-1)
		for i, raw := range record[1:] {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, &domain.ParseError{Dataset: datasetName, Line: line,
					Err: fmt.Errorf("column %q: %w", header[i+1], err)}
			}
			counts[i] = n
		}
		obs = append(obs, observation{date: date, counts: counts})
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].date.Before(obs[j].date) })

	table := domain.NewTable()
	for i := 1; i < len(obs); i++ {
		prev, cur := obs[i-1], obs[i]
		index := cur.date.Format(dateLayout)
		for _, g := range groups {
			var sum int64
			for _, c := range g.Columns {
				pos := col[c] - 1
				sum += cur.counts[pos] - prev.counts[pos]
			}
			table.Set(index, g.Name, float64(sum))
		}
	}
	return table, nil
}
