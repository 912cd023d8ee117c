package api

// Distro is one tracked distribution with the metadata the rendering
// collaborator needs for branding.
type Distro struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Series is one column of a canonical table. A nil value marks a cell
// with no defined ratio (a share over a zero row total).
type Series struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

// Table is the wire shape of a canonical table: a shared date index plus
// one series per distribution (or version).
type Table struct {
	Index  []string `json:"index"`
	Series []Series `json:"series"`
}
