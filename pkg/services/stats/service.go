// Package stats wires the fetch, normalize and pivot stages into the
// canonical tables consumed by reporting.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/el-tools/elstats/pkg/services/config"
	"github.com/el-tools/elstats/pkg/services/containers"
	"github.com/el-tools/elstats/pkg/services/epel"
	"github.com/el-tools/elstats/pkg/services/table"
)

// Fetcher is the caching download dependency; satisfied by fetch.Fetcher.
type Fetcher interface {
	EnsureCached(ctx context.Context, url, localDir, localFile string) (string, error)
}

// EPELOptions narrow the usage table before pivoting. Zero values apply
// no restriction.
type EPELOptions struct {
	RepoTag string
	OSName  string
	Arch    string
	Age     domain.AgeFilter
	Since   time.Time
	Shares  bool
}

// Service produces the canonical date-by-distribution tables.
type Service struct {
	cfg     *config.Config
	fetcher Fetcher
}

func NewService(cfg *config.Config, fetcher Fetcher) *Service {
	return &Service{cfg: cfg, fetcher: fetcher}
}

// Refresh ensures both cached datasets are present and fresh.
func (s *Service) Refresh(ctx context.Context) error {
	if _, err := s.fetcher.EnsureCached(ctx, s.cfg.EPELDataURL, s.cfg.DataDir, s.cfg.EPELCacheFile); err != nil {
		return err
	}
	if _, err := s.fetcher.EnsureCached(ctx, s.cfg.DockerHubDataURL, s.cfg.DataDir, s.cfg.DockerHubFile); err != nil {
		return err
	}
	return nil
}

func (s *Service) loadEPEL(ctx context.Context) ([]domain.UsageRow, error) {
	path, err := s.fetcher.EnsureCached(ctx, s.cfg.EPELDataURL, s.cfg.DataDir, s.cfg.EPELCacheFile)
	if err != nil {
		return nil, err
	}
	errorDates, err := s.cfg.ErrorDateSet()
	if err != nil {
		return nil, fmt.Errorf("invalid error_dates config: %w", err)
	}
	return epel.Load(path, s.cfg.EPELRepos, errorDates)
}

// EPELUsage builds the date-by-distribution hits table from the countme
// dataset, applying the requested filters before pivoting.
func (s *Service) EPELUsage(ctx context.Context, opts EPELOptions) (*domain.Table, error) {
	rows, err := s.loadEPEL(ctx)
	if err != nil {
		return nil, err
	}

	if opts.RepoTag != "" {
		rows = epel.FilterByRepoTag(rows, opts.RepoTag)
	}
	if opts.OSName != "" {
		rows = epel.FilterByOSName(rows, opts.OSName)
	}
	if opts.Arch != "" {
		rows = epel.FilterByArch(rows, opts.Arch)
	}
	rows = epel.FilterBySystemAge(rows, opts.Age)
	if !opts.Since.IsZero() {
		rows = epel.FilterByDate(rows, opts.Since)
	}

	t := table.Pivot(rows, table.Hits, table.ByWeekEnd, table.ByOSName, 0)
	if opts.Shares {
		return table.Shares(t), nil
	}
	return table.AddTotal(t), nil
}

// RockyVersions builds the date-by-version hits table for Rocky Linux,
// with the version whitelist applied to drop upstream noise.
func (s *Service) RockyVersions(ctx context.Context) (*domain.Table, error) {
	rows, err := s.loadEPEL(ctx)
	if err != nil {
		return nil, err
	}

	rows = epel.FilterByOSName(rows, string(domain.DistroRockyLinux))
	rows = epel.FilterValidRockyVersions(rows, s.cfg.ValidRockyVersions)

	return table.Pivot(rows, table.Hits, table.ByWeekEnd, table.ByOSVersion, 0), nil
}

// ContainerPulls builds the date-by-distribution pull-delta table from the
// DockerHub export.
func (s *Service) ContainerPulls(ctx context.Context, shares bool) (*domain.Table, error) {
	path, err := s.fetcher.EnsureCached(ctx, s.cfg.DockerHubDataURL, s.cfg.DataDir, s.cfg.DockerHubFile)
	if err != nil {
		return nil, err
	}

	t, err := containers.Load(path, s.cfg.ContainerGroups)
	if err != nil {
		return nil, err
	}
	if shares {
		return table.Shares(t), nil
	}
	return table.AddTotal(t), nil
}
