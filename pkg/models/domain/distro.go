package domain

// Distro identifies one of the tracked Enterprise Linux distributions.
// The set of tracked distributions is configuration, not code; these
// constants exist for the upstream names that appear in source data.
type Distro string

const (
	DistroAlmaLinux  Distro = "AlmaLinux"
	DistroCentOS     Distro = "CentOS Linux"
	DistroStream     Distro = "CentOS Stream"
	DistroOracle     Distro = "Oracle Linux Server"
	DistroRHEL       Distro = "Red Hat Enterprise Linux"
	DistroRockyLinux Distro = "Rocky Linux"
)

// DistroInfo carries the display metadata for one tracked distribution.
type DistroInfo struct {
	Name  Distro
	Label string
	Color string
}
