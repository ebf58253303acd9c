package spray

import (
	"strings"

	"github.com/gravitrone/sprayctl/internal/api"
)

// DefaultRowPath is the JSON row path a new row starts with.
const DefaultRowPath = "/"

// ScopeSeparator joins scope components of a logical name.
const ScopeSeparator = "::"

// SelectedFileRow maps one source file to its target logical name.
type SelectedFileRow struct {
	TargetName    string
	TargetRowPath string
	SourceFile    string
	SourceIP      string
}

// FormValues holds every field of the Import JSON form.
type FormValues struct {
	DestGroup           string
	DFUServerQueue      string
	NamePrefix          string
	SourceFormat        SourceFormat
	SourceMaxRecordSize string
	Overwrite           bool
	Replicate           bool
	NoSplit             bool
	NoCommon            bool
	Compress            bool
	FailIfNoSourceFile  bool
	DelayedReplication  bool
	ExpireDays          string
	SelectedFiles       []SelectedFileRow
}

// DefaultValues returns a fresh set of defaults with no rows.
func DefaultValues() FormValues {
	return FormValues{
		SourceFormat:       FormatASCII,
		NoCommon:           true,
		DelayedReplication: true,
	}
}

// clone copies v so the rows slice is not shared.
func (v FormValues) clone() FormValues {
	out := v
	if v.SelectedFiles != nil {
		out.SelectedFiles = append([]SelectedFileRow(nil), v.SelectedFiles...)
	}
	return out
}

// JoinLogicalName prefixes target with the scope prefix, adding a single
// "::" only where neither side already supplies one.
func JoinLogicalName(prefix, target string) string {
	sep := ""
	if prefix != "" && !strings.HasSuffix(prefix, ScopeSeparator) &&
		target != "" && !strings.HasPrefix(target, ScopeSeparator) {
		sep = ScopeSeparator
	}
	return prefix + sep + target
}

// WorkunitPath is the navigation path of a DFU workunit status view.
func WorkunitPath(wuid string) string {
	return "/dfuworkunits/" + wuid
}

// WorkunitURL is the browser URL of the workunit status page under baseURL.
func WorkunitURL(baseURL, wuid string) string {
	return strings.TrimSuffix(baseURL, "/") + "/esp/files/index.html#" + WorkunitPath(wuid)
}

// BuildRequests turns validated values into one spray request per row, in
// row order.
func BuildRequests(v FormValues) []api.SprayRequest {
	shared := api.SprayRequest{
		DestGroup:           v.DestGroup,
		DFUServerQueue:      v.DFUServerQueue,
		NamePrefix:          v.NamePrefix,
		SourceFormat:        v.SourceFormat.Key(),
		SourceMaxRecordSize: strings.TrimSpace(v.SourceMaxRecordSize),
		Overwrite:           v.Overwrite,
		Replicate:           v.Replicate,
		NoSplit:             v.NoSplit,
		NoCommon:            v.NoCommon,
		Compress:            v.Compress,
		FailIfNoSourceFile:  v.FailIfNoSourceFile,
		DelayedReplication:  v.DelayedReplication,
		ExpireDays:          strings.TrimSpace(v.ExpireDays),
	}

	reqs := make([]api.SprayRequest, len(v.SelectedFiles))
	for i, row := range v.SelectedFiles {
		req := shared
		req.SourceIP = row.SourceIP
		req.SourcePath = row.SourceFile
		req.IsJSON = true
		req.DestLogicalName = JoinLogicalName(v.NamePrefix, row.TargetName)
		req.SourceRowTag = row.TargetRowPath
		reqs[i] = req
	}
	return reqs
}
