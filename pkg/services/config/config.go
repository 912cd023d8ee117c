package config

import (
	"fmt"
	"time"

	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/spf13/viper"
)

// DistroConfig is one tracked distribution with its display metadata.
type DistroConfig struct {
	Name  string `mapstructure:"name"`
	Label string `mapstructure:"label"`
	Color string `mapstructure:"color"`
}

// ContainerGroup maps a canonical distribution onto the raw image-tag
// columns that roll up into it. Groups are an ordered list so output
// column order follows configuration, not map iteration.
type ContainerGroup struct {
	Name    string   `mapstructure:"name"`
	Columns []string `mapstructure:"columns"`
}

// Config is the full configuration surface of the pipeline. Every value
// has a compiled-in default matching the upstream datasets and can be
// overridden from a YAML file.
type Config struct {
	DataDir         string `mapstructure:"data_dir"`
	CacheMaxAgeDays int    `mapstructure:"cache_max_age_days"`

	EPELDataURL      string `mapstructure:"epel_data_url"`
	DockerHubDataURL string `mapstructure:"dockerhub_data_url"`
	EPELCacheFile    string `mapstructure:"epel_cache_file"`
	DockerHubFile    string `mapstructure:"dockerhub_cache_file"`

	EPELRepos  []string `mapstructure:"epel_repos"`
	ErrorDates []string `mapstructure:"error_dates"`

	Distros            []DistroConfig   `mapstructure:"distros"`
	CurrentDistros     []string         `mapstructure:"current_distros"`
	ValidRockyVersions []string         `mapstructure:"valid_rocky_versions"`
	ContainerGroups    []ContainerGroup `mapstructure:"container_groups"`

	StartDateLong string `mapstructure:"start_date_long"`
	Emphasize     string `mapstructure:"emphasize"`
}

// Default returns the configuration matching the public upstream datasets.
func Default() Config {
	return Config{
		DataDir:         "data",
		CacheMaxAgeDays: 7,

		EPELDataURL:      "https://data-analysis.fedoraproject.org/csv-reports/countme/totals.csv",
		DockerHubDataURL: "https://docs.google.com/spreadsheets/d/16SfYqf2cZIe-t4ADNNXTeX3RBz5vi4kXSkwCrKFD0M8/export?gid=0&format=csv",
		EPELCacheFile:    "epel.csv",
		DockerHubFile:    "dockerhub.csv",

		EPELRepos: []string{"epel-8", "epel-9", "epel-10"},
		ErrorDates: []string{
			"2023-05-07",
			"2023-05-14",
			"2023-10-29",
			"2023-11-05",
		},

		Distros: []DistroConfig{
			{Name: "AlmaLinux", Label: "AlmaLinux", Color: "#4AC1FA"},
			{Name: "CentOS Linux", Label: "CentOS Legacy", Color: "#E9A942"},
			{Name: "CentOS Stream", Label: "CentOS Stream", Color: "#9A5689"},
			{Name: "Oracle Linux Server", Label: "Oracle", Color: "#BE503B"},
			{Name: "Red Hat Enterprise Linux", Label: "RHEL", Color: "#E2321D"},
			{Name: "Rocky Linux", Label: "Rocky Linux", Color: "#48B585"},
		},
		CurrentDistros: []string{
			"AlmaLinux",
			"CentOS Stream",
			"Oracle Linux Server",
			"Red Hat Enterprise Linux",
			"Rocky Linux",
		},
		ValidRockyVersions: []string{
			"8.3", "8.4", "8.5", "8.6", "8.7", "8.8", "8.9", "8.10",
			"9.0", "9.1", "9.2", "9.3", "9.4", "9.5", "9.6",
			"10.0",
		},
		ContainerGroups: []ContainerGroup{
			{Name: "AlmaLinux", Columns: []string{
				"library/almalinux",
				"almalinux/8-base", "almalinux/8-init", "almalinux/8-micro", "almalinux/8-minimal",
				"almalinux/9-base", "almalinux/9-init", "almalinux/9-micro", "almalinux/9-minimal",
				"almalinux/almalinux", "almalinux/amd64", "almalinux/arm64v8",
				"almalinux/i386", "almalinux/ppc64le", "almalinux/s390x",
			}},
			{Name: "CentOS Linux", Columns: []string{"library/centos"}},
			{Name: "Oracle Linux Server", Columns: []string{"library/oraclelinux"}},
			{Name: "Red Hat Enterprise Linux", Columns: []string{
				"redhat/ubi8", "redhat/ubi8-init", "redhat/ubi8-micro", "redhat/ubi8-minimal",
				"redhat/ubi9", "redhat/ubi9-init", "redhat/ubi9-micro", "redhat/ubi9-minimal",
			}},
			{Name: "Rocky Linux", Columns: []string{
				"library/rockylinux", "rockylinux/rockylinux",
			}},
		},

		StartDateLong: "2020-12-08",
		Emphasize:     "Rocky Linux",
	}
}

// Load reads a YAML configuration file and overlays it on the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// CacheMaxAge is the freshness threshold as a duration.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeDays) * 24 * time.Hour
}

// ErrorDateSet parses the configured error dates for exact-match lookup.
func (c *Config) ErrorDateSet() (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(c.ErrorDates))
	for _, d := range c.ErrorDates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, fmt.Errorf("invalid error date %q: %w", d, err)
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// DistroInfos returns the tracked universe as domain metadata.
func (c *Config) DistroInfos() []domain.DistroInfo {
	out := make([]domain.DistroInfo, 0, len(c.Distros))
	for _, d := range c.Distros {
		out = append(out, domain.DistroInfo{
			Name:  domain.Distro(d.Name),
			Label: d.Label,
			Color: d.Color,
		})
	}
	return out
}
