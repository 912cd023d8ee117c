package containers

import (
	"strings"
	"testing"

	"github.com/el-tools/elstats/pkg/models/domain"
	"github.com/el-tools/elstats/pkg/services/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DiffsCumulativeCountersAndDropsFirstRow(t *testing.T) {
	input := "Date,library/rockylinux\n" +
		"2024-01-01,100\n" +
		"2024-01-02,140\n" +
		"2024-01-03,142\n"
	groups := []config.ContainerGroup{
		{Name: "Rocky Linux", Columns: []string{"library/rockylinux"}},
	}

	got, err := parse(strings.NewReader(input), groups)

	require.NoError(t, err)
	require.Equal(t, []string{"2024-01-02", "2024-01-03"}, got.Index())
	assert.Equal(t, float64(40), got.Value("2024-01-02", "Rocky Linux"))
	assert.Equal(t, float64(2), got.Value("2024-01-03", "Rocky Linux"))
}

func TestParse_AggregatesGroupColumns(t *testing.T) {
	input := "Date,library/rockylinux,rockylinux/rockylinux,library/centos\n" +
		"2024-01-01,100,10,1000\n" +
		"2024-01-02,130,25,1100\n"
	groups := []config.ContainerGroup{
		{Name: "Rocky Linux", Columns: []string{"library/rockylinux", "rockylinux/rockylinux"}},
		{Name: "CentOS Linux", Columns: []string{"library/centos"}},
	}

	got, err := parse(strings.NewReader(input), groups)

	require.NoError(t, err)
	assert.Equal(t, []string{"Rocky Linux", "CentOS Linux"}, got.Columns())
	assert.Equal(t, float64(45), got.Value("2024-01-02", "Rocky Linux"))
	assert.Equal(t, float64(100), got.Value("2024-01-02", "CentOS Linux"))
}

func TestParse_MissingGroupColumnIsSchemaError(t *testing.T) {
	input := "Date,library/rockylinux\n" +
		"2024-01-01,100\n" +
		"2024-01-02,140\n"
	groups := []config.ContainerGroup{
		{Name: "Rocky Linux", Columns: []string{"library/rockylinux", "rockylinux/rockylinux"}},
	}

	_, err := parse(strings.NewReader(input), groups)

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "rockylinux/rockylinux", schemaErr.Column)
}

func TestParse_SortsRowsBeforeDiffing(t *testing.T) {
	// Rows out of order: the diff must run over the chronological sequence.
	input := "Date,library/rockylinux\n" +
		"2024-01-03,142\n" +
		"2024-01-01,100\n" +
		"2024-01-02,140\n"
	groups := []config.ContainerGroup{
		{Name: "Rocky Linux", Columns: []string{"library/rockylinux"}},
	}

	got, err := parse(strings.NewReader(input), groups)

	require.NoError(t, err)
	assert.Equal(t, float64(40), got.Value("2024-01-02", "Rocky Linux"))
	assert.Equal(t, float64(2), got.Value("2024-01-03", "Rocky Linux"))
}

func TestParse_MalformedCounterFailsLoad(t *testing.T) {
	input := "Date,library/rockylinux\n" +
		"2024-01-01,100\n" +
		"2024-01-02,n/a\n"
	groups := []config.ContainerGroup{
		{Name: "Rocky Linux", Columns: []string{"library/rockylinux"}},
	}

	_, err := parse(strings.NewReader(input), groups)

	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 3, parseErr.Line)
}
