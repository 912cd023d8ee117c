// Package epel loads and filters the Fedora countme totals dataset.
package epel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
)

const datasetName = "epel"

// dateLayout is the day-resolution format the countme export uses.
const dateLayout = "2006-01-02"

var requiredColumns = []string{
	"week_start", "week_end",
	"os_name", "os_version", "os_variant", "os_arch",
	"repo_tag", "repo_arch",
	"sys_age", "hits",
}

// Load parses the cached countme CSV, keeping only rows whose repo_tag is
// in repoTags and whose week_end is not one of the known error dates.
// Malformed rows fail the whole load with a ParseError.
func Load(path string, repoTags []string, errorDates map[string]struct{}) ([]domain.UsageRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return parse(f, repoTags, errorDates)
}

func parse(r io.Reader, repoTags []string, errorDates map[string]struct{}) ([]domain.UsageRow, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		return nil, &domain.ParseError{Dataset: datasetName, Line: 1, Err: err}
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, &domain.SchemaError{Dataset: datasetName, Column: name}
		}
	}

	tags := make(map[string]struct{}, len(repoTags))
	for _, t := range repoTags {
		tags[t] = struct{}{}
	}

	var rows []domain.UsageRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Dataset: datasetName, Line: line, Err: err}
		}

		if _, ok := tags[record[col["repo_tag"]]]; !ok {
			continue
		}
		if _, ok := errorDates[record[col["week_end"]]]; ok {
			continue
		}

		row, err := typeRow(record, col)
		if err != nil {
			return nil, &domain.ParseError{Dataset: datasetName, Line: line, Err: err}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func typeRow(record []string, col map[string]int) (domain.UsageRow, error) {
	weekStart, err := time.Parse(dateLayout, record[col["week_start"]])
	if err != nil {
		return domain.UsageRow{}, fmt.Errorf("week_start: %w", err)
	}
	weekEnd, err := time.Parse(dateLayout, record[col["week_end"]])
	if err != nil {
		return domain.UsageRow{}, fmt.Errorf("week_end: %w", err)
	}
	sysAge, err := strconv.Atoi(record[col["sys_age"]])
	if err != nil {
		return domain.UsageRow{}, fmt.Errorf("sys_age: %w", err)
	}
	hits, err := strconv.Atoi(record[col["hits"]])
	if err != nil {
		return domain.UsageRow{}, fmt.Errorf("hits: %w", err)
	}

	return domain.UsageRow{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		OSName:    record[col["os_name"]],
		OSVersion: record[col["os_version"]],
		OSVariant: record[col["os_variant"]],
		OSArch:    record[col["os_arch"]],
		RepoTag:   record[col["repo_tag"]],
		RepoArch:  record[col["repo_arch"]],
		SysAge:    sysAge,
		Hits:      hits,
	}, nil
}
