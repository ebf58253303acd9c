package spray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/sprayctl/internal/api"
)

func sampleSelection() []LandingZoneFile {
	return []LandingZoneFile{
		{Name: "people.json", FullPath: "/var/lib/HPCCSystems/mydropzone/people.json", NetAddress: "10.0.0.5"},
		{Name: "orders.json", FullPath: "/var/lib/HPCCSystems/mydropzone/orders.json", NetAddress: "10.0.0.6"},
	}
}

func TestNewRowsPreservesOrderAndDefaults(t *testing.T) {
	rows := NewRows(sampleSelection())
	require.Len(t, rows, 2)
	assert.Equal(t, SelectedFileRow{
		TargetName:    "people.json",
		TargetRowPath: "/",
		SourceFile:    "/var/lib/HPCCSystems/mydropzone/people.json",
		SourceIP:      "10.0.0.5",
	}, rows[0])
	assert.Equal(t, "orders.json", rows[1].TargetName)
	assert.Equal(t, "10.0.0.6", rows[1].SourceIP)
}

func TestNewRowsEmpty(t *testing.T) {
	assert.Empty(t, NewRows(nil))
	assert.Empty(t, NewRows([]LandingZoneFile{}))
}

func TestValidateSelectionNamesIndexAndField(t *testing.T) {
	sel := sampleSelection()
	sel[1].NetAddress = ""
	err := ValidateSelection(sel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selection[1]")
	assert.Contains(t, err.Error(), "NetAddress")

	err = ValidateSelection([]LandingZoneFile{{FullPath: "/x", NetAddress: "h"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestFileFromListing(t *testing.T) {
	zone := api.DropZone{Name: "mydropzone", NetAddress: "10.0.0.5", Path: "/var/lib/HPCCSystems/mydropzone/", Linux: "true"}

	f := FileFromListing(zone, "sub", api.PhysicalFile{Name: "a.json"})
	assert.Equal(t, "/var/lib/HPCCSystems/mydropzone/sub/a.json", f.FullPath)
	assert.Equal(t, "10.0.0.5", f.NetAddress)
	assert.Equal(t, "a.json", f.Name)

	f = FileFromListing(zone, "", api.PhysicalFile{Name: "b.json", Path: "/var/lib/HPCCSystems/mydropzone/"})
	assert.Equal(t, "/var/lib/HPCCSystems/mydropzone/b.json", f.FullPath)

	win := api.DropZone{NetAddress: "10.0.0.9", Path: `C:\dz`, Linux: "false"}
	f = FileFromListing(win, "", api.PhysicalFile{Name: "c.json"})
	assert.Equal(t, `C:\dz\c.json`, f.FullPath)
}
