package epel

import (
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
)

// The filters below are pure: each returns a fresh slice and leaves its
// input untouched. An empty result is valid output, not an error.

// FilterByDate keeps rows whose week_end is strictly after start.
func FilterByDate(rows []domain.UsageRow, start time.Time) []domain.UsageRow {
	return filter(rows, func(r domain.UsageRow) bool {
		return r.WeekEnd.After(start)
	})
}

// FilterBySystemAge keeps rows matching the given age variant.
func FilterBySystemAge(rows []domain.UsageRow, age domain.AgeFilter) []domain.UsageRow {
	return filter(rows, func(r domain.UsageRow) bool {
		return age.Matches(r.SysAge)
	})
}

// FilterByRepoTag keeps rows for one repository tag.
func FilterByRepoTag(rows []domain.UsageRow, repoTag string) []domain.UsageRow {
	return filter(rows, func(r domain.UsageRow) bool {
		return r.RepoTag == repoTag
	})
}

// FilterByOSName keeps rows for one distribution name.
func FilterByOSName(rows []domain.UsageRow, osName string) []domain.UsageRow {
	return filter(rows, func(r domain.UsageRow) bool {
		return r.OSName == osName
	})
}

// AltArch selects every repo architecture except x86_64.
const AltArch = "altarch"

// FilterByArch keeps rows for one repo architecture, or for every
// non-x86_64 architecture when arch is AltArch.
func FilterByArch(rows []domain.UsageRow, arch string) []domain.UsageRow {
	if arch == AltArch {
		return filter(rows, func(r domain.UsageRow) bool {
			return r.RepoArch != "x86_64"
		})
	}
	return filter(rows, func(r domain.UsageRow) bool {
		return r.RepoArch == arch
	})
}

// FilterValidRockyVersions keeps rows whose os_version is in the
// configured whitelist, dropping pre-release and malformed version tags
// that show up in the upstream data.
func FilterValidRockyVersions(rows []domain.UsageRow, valid []string) []domain.UsageRow {
	set := make(map[string]struct{}, len(valid))
	for _, v := range valid {
		set[v] = struct{}{}
	}
	return filter(rows, func(r domain.UsageRow) bool {
		_, ok := set[r.OSVersion]
		return ok
	})
}

func filter(rows []domain.UsageRow, keep func(domain.UsageRow) bool) []domain.UsageRow {
	out := make([]domain.UsageRow, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
