package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/el-tools/elstats/pkg/runtime/terminal/export"
	"github.com/el-tools/elstats/pkg/services/fetch"
	"github.com/el-tools/elstats/pkg/services/stats"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	format  string
	repoTag string
	osName  string
	arch    string
	age     string
	since   string
	shares  bool

	deps   Deps
	output io.Writer
}

// NewReportCmd builds the report command tree: epel, containers and
// versions views over the canonical tables.
func NewReportCmd(deps Deps, output io.Writer) *cobra.Command {
	rc := &ReportCmd{deps: deps, output: output}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a usage table from the cached datasets",
	}
	cmd.PersistentFlags().StringVar(&rc.format, "format", "table", "Output format (table or csv)")

	epelCmd := &cobra.Command{
		Use:   "epel",
		Short: "Weekly EPEL hits per distribution",
		RunE:  rc.runEPEL,
	}
	epelCmd.Flags().StringVar(&rc.repoTag, "repo", "", "Restrict to one repository tag (e.g. epel-9)")
	epelCmd.Flags().StringVar(&rc.osName, "os", "", "Restrict to one distribution name")
	epelCmd.Flags().StringVar(&rc.arch, "arch", "", "Restrict to one repo architecture, or 'altarch' for everything but x86_64")
	epelCmd.Flags().StringVar(&rc.age, "age", "", "System age bucket: longterm, ephemeral or a minimum age")
	epelCmd.Flags().StringVar(&rc.since, "since", "", "Keep weeks ending strictly after this date (YYYY-MM-DD)")
	epelCmd.Flags().BoolVar(&rc.shares, "shares", false, "Report per-row shares instead of counts")

	containersCmd := &cobra.Command{
		Use:   "containers",
		Short: "Daily container pulls per distribution",
		RunE:  rc.runContainers,
	}
	containersCmd.Flags().BoolVar(&rc.shares, "shares", false, "Report per-row shares instead of counts")

	versionsCmd := &cobra.Command{
		Use:   "versions",
		Short: "Weekly EPEL hits per Rocky Linux version",
		RunE:  rc.runVersions,
	}

	cmd.AddCommand(epelCmd)
	cmd.AddCommand(containersCmd)
	cmd.AddCommand(versionsCmd)

	return cmd
}

func (rc *ReportCmd) service() (*stats.Service, *export.Reporter, error) {
	cfg, err := rc.deps.Config()
	if err != nil {
		return nil, nil, err
	}
	format, err := export.ParseFormat(rc.format)
	if err != nil {
		return nil, nil, err
	}

	svc := stats.NewService(cfg, fetch.NewFetcher(fetch.Options{MaxAge: cfg.CacheMaxAge()}))
	return svc, export.NewReporter(rc.output, format), nil
}

func (rc *ReportCmd) runEPEL(cmd *cobra.Command, _ []string) error {
	svc, reporter, err := rc.service()
	if err != nil {
		return err
	}

	age, ok := domain.ParseAgeFilter(rc.age)
	if !ok {
		return fmt.Errorf("unknown age bucket %q (want longterm, ephemeral or an integer)", rc.age)
	}

	opts := stats.EPELOptions{
		RepoTag: rc.repoTag,
		OSName:  rc.osName,
		Arch:    rc.arch,
		Age:     age,
		Shares:  rc.shares,
	}
	if rc.since != "" {
		since, err := time.Parse("2006-01-02", rc.since)
		if err != nil {
			return fmt.Errorf("invalid --since date: %w", err)
		}
		opts.Since = since
	}

	t, err := svc.EPELUsage(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return reporter.Handle("EPEL usage", t)
}

func (rc *ReportCmd) runContainers(cmd *cobra.Command, _ []string) error {
	svc, reporter, err := rc.service()
	if err != nil {
		return err
	}

	t, err := svc.ContainerPulls(cmd.Context(), rc.shares)
	if err != nil {
		return err
	}
	return reporter.Handle("Container pulls", t)
}

func (rc *ReportCmd) runVersions(cmd *cobra.Command, _ []string) error {
	svc, reporter, err := rc.service()
	if err != nil {
		return err
	}

	t, err := svc.RockyVersions(cmd.Context())
	if err != nil {
		return err
	}
	return reporter.Handle("Rocky Linux versions", t)
}
