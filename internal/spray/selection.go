package spray

import (
	"fmt"
	"path"
	"strings"

	"github.com/gravitrone/sprayctl/internal/api"
)

// LandingZoneFile is one externally selected source file.
type LandingZoneFile struct {
	Name       string
	FullPath   string
	NetAddress string
}

// ValidateSelection checks that every entry carries a name, a full path and
// a network address.
func ValidateSelection(selection []LandingZoneFile) error {
	for i, f := range selection {
		switch {
		case strings.TrimSpace(f.Name) == "":
			return fmt.Errorf("selection[%d]: missing name", i)
		case strings.TrimSpace(f.FullPath) == "":
			return fmt.Errorf("selection[%d] %s: missing fullPath", i, f.Name)
		case strings.TrimSpace(f.NetAddress) == "":
			return fmt.Errorf("selection[%d] %s: missing NetAddress", i, f.Name)
		}
	}
	return nil
}

// NewRows builds one form row per selected file, in selection order.
func NewRows(selection []LandingZoneFile) []SelectedFileRow {
	rows := make([]SelectedFileRow, len(selection))
	for i, f := range selection {
		rows[i] = SelectedFileRow{
			TargetName:    f.Name,
			TargetRowPath: DefaultRowPath,
			SourceFile:    f.FullPath,
			SourceIP:      f.NetAddress,
		}
	}
	return rows
}

// FileFromListing turns a landing-zone listing entry into a selection entry.
// dir is the directory the entry was listed from, relative to the zone root.
func FileFromListing(zone api.DropZone, dir string, f api.PhysicalFile) LandingZoneFile {
	sep := zone.PathSeparator()
	full := f.Path
	if full == "" {
		parts := []string{strings.TrimSuffix(zone.Path, sep)}
		if d := strings.Trim(dir, sep); d != "" {
			parts = append(parts, d)
		}
		parts = append(parts, f.Name)
		full = strings.Join(parts, sep)
	} else if !strings.HasSuffix(full, f.Name) {
		full = strings.TrimSuffix(full, sep) + sep + f.Name
	}
	if sep == "/" {
		full = path.Clean(full)
	}
	return LandingZoneFile{
		Name:       f.Name,
		FullPath:   full,
		NetAddress: zone.NetAddress,
	}
}
