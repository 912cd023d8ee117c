package domain

import (
	"strconv"
	"time"
)

// UsageRow is one observation window from the EPEL countme dataset.
// Rows are immutable once loaded; filters copy, they never mutate.
type UsageRow struct {
	WeekStart time.Time
	WeekEnd   time.Time
	OSName    string
	OSVersion string
	OSVariant string
	OSArch    string
	RepoTag   string
	RepoArch  string
	SysAge    int
	Hits      int
}

type ageKind int

const (
	ageAny ageKind = iota
	ageLongTerm
	ageEphemeral
	ageMin
)

// AgeFilter selects usage rows by system age. The zero value matches
// every row; AnyAge is the explicit passthrough variant.
type AgeFilter struct {
	kind ageKind
	min  int
}

// AnyAge matches every row regardless of system age.
func AnyAge() AgeFilter { return AgeFilter{kind: ageAny} }

// LongTerm matches systems seen more than once (sys_age > 1).
func LongTerm() AgeFilter { return AgeFilter{kind: ageLongTerm} }

// Ephemeral matches first-time systems (sys_age == 1).
func Ephemeral() AgeFilter { return AgeFilter{kind: ageEphemeral} }

// MinAge matches systems with sys_age strictly greater than n.
func MinAge(n int) AgeFilter { return AgeFilter{kind: ageMin, min: n} }

func (f AgeFilter) Matches(sysAge int) bool {
	switch f.kind {
	case ageLongTerm:
		return sysAge > 1
	case ageEphemeral:
		return sysAge == 1
	case ageMin:
		return sysAge > f.min
	default:
		return true
	}
}

// ParseAgeFilter maps the CLI spellings onto a filter variant. An empty
// string means no age restriction; an integer n means sys_age > n; anything
// else unrecognized is rejected rather than silently passed through.
func ParseAgeFilter(s string) (AgeFilter, bool) {
	switch s {
	case "":
		return AnyAge(), true
	case "longterm":
		return LongTerm(), true
	case "ephemeral":
		return Ephemeral(), true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return MinAge(n), true
	}
	return AgeFilter{}, false
}
