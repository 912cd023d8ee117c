package commands

import (
	"fmt"
	"time"

	"github.com/el-tools/elstats/pkg/services/config"
	"github.com/el-tools/elstats/pkg/services/fetch"
	"github.com/el-tools/elstats/pkg/services/stats"
	"github.com/spf13/cobra"
)

// Deps are the collaborators shared across commands.
type Deps struct {
	Config func() (*config.Config, error)
}

type FetchCmd struct {
	maxAgeDays int
	deps       Deps
}

// NewFetchCmd refreshes both cached datasets.
func NewFetchCmd(deps Deps) *cobra.Command {
	fc := &FetchCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the EPEL and DockerHub datasets into the local cache",
		RunE:  fc.run,
	}

	cmd.Flags().IntVar(&fc.maxAgeDays, "max-age", -1,
		"Cache freshness threshold in days (overrides configuration; 0 forces a download)")

	return cmd
}

func (fc *FetchCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := fc.deps.Config()
	if err != nil {
		return err
	}

	maxAge := cfg.CacheMaxAge()
	if fc.maxAgeDays >= 0 {
		maxAge = time.Duration(fc.maxAgeDays) * 24 * time.Hour
	}

	svc := stats.NewService(cfg, fetch.NewFetcher(fetch.Options{MaxAge: maxAge}))
	if err := svc.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to refresh datasets: %w", err)
	}
	return nil
}
