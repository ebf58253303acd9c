package api

import "strings"

// --- FileSpray ---

// SprayRequest is the SprayVariable payload for a single source file.
type SprayRequest struct {
	DestGroup           string `json:"destGroup"`
	DFUServerQueue      string `json:"DFUServerQueue"`
	NamePrefix          string `json:"namePrefix"`
	SourceFormat        string `json:"sourceFormat"`
	SourceMaxRecordSize string `json:"sourceMaxRecordSize,omitempty"`
	Overwrite           bool   `json:"overwrite"`
	Replicate           bool   `json:"replicate"`
	NoSplit             bool   `json:"nosplit"`
	NoCommon            bool   `json:"noCommon"`
	Compress            bool   `json:"compress"`
	FailIfNoSourceFile  bool   `json:"failIfNoSourceFile"`
	DelayedReplication  bool   `json:"delayedReplication"`
	ExpireDays          string `json:"expireDays,omitempty"`
	SourceIP            string `json:"sourceIP"`
	SourcePath          string `json:"sourcePath"`
	IsJSON              bool   `json:"isJSON"`
	DestLogicalName     string `json:"destLogicalName"`
	SourceRowTag        string `json:"sourceRowTag"`
}

// SprayResponse carries the DFU workunit created for a spray.
type SprayResponse struct {
	WUID string `json:"wuid"`
}

// DFUWorkunit is the status record of a spray job.
type DFUWorkunit struct {
	ID                string `json:"ID"`
	JobName           string `json:"JobName"`
	Queue             string `json:"Queue"`
	User              string `json:"User"`
	CommandMessage    string `json:"CommandMessage"`
	State             int    `json:"State"`
	StateMessage      string `json:"StateMessage"`
	PercentDone       int    `json:"PercentDone"`
	ProgressMessage   string `json:"ProgressMessage"`
	SummaryMessage    string `json:"SummaryMessage"`
	SourceLogicalName string `json:"SourceLogicalName"`
	DestLogicalName   string `json:"DestLogicalName"`
	DestGroupName     string `json:"DestGroupName"`
	TimeStarted       string `json:"TimeStarted"`
	TimeStopped       string `json:"TimeStopped"`
}

// Finished reports whether the workunit reached a terminal state.
func (w DFUWorkunit) Finished() bool {
	switch strings.ToLower(w.StateMessage) {
	case "finished", "failed", "aborted":
		return true
	}
	return false
}

// DropZone is a landing zone registered with the cluster.
type DropZone struct {
	Name       string `json:"Name"`
	NetAddress string `json:"NetAddress"`
	Path       string `json:"Path"`
	Computer   string `json:"Computer"`
	Linux      string `json:"Linux"`
}

// PathSeparator returns the directory separator used on the zone's host.
func (z DropZone) PathSeparator() string {
	if strings.EqualFold(z.Linux, "false") {
		return "\\"
	}
	return "/"
}

// PhysicalFile is an entry in a landing-zone directory listing.
type PhysicalFile struct {
	Name         string `json:"name"`
	IsDir        bool   `json:"isDir"`
	FileSize     int64  `json:"filesize"`
	ModifiedTime string `json:"modifiedtime"`
	Path         string `json:"Path"`
}

// DropZoneListing is the landing-zone inventory plus the root listing of the
// first (or requested) zone.
type DropZoneListing struct {
	DropZones []DropZone
	Files     []PhysicalFile
}

// --- WsTopology ---

// TargetGroup is a cluster group a file can be sprayed to.
type TargetGroup struct {
	Name string `json:"Name"`
	Kind string `json:"Kind"`
}

// DFUServer is a DFU server and the queue it serves.
type DFUServer struct {
	Name  string `json:"Name"`
	Queue string `json:"Queue"`
}

// --- wire envelopes ---

type dropZoneFilesResponse struct {
	DropZones struct {
		DropZone []DropZone `json:"DropZone"`
	} `json:"DropZones"`
	Files struct {
		PhysicalFileStruct []PhysicalFile `json:"PhysicalFileStruct"`
	} `json:"Files"`
}

type fileListResponse struct {
	Files struct {
		PhysicalFileStruct []PhysicalFile `json:"PhysicalFileStruct"`
	} `json:"files"`
}

type getDFUWorkunitResponse struct {
	Result DFUWorkunit `json:"result"`
}

type tpGroupQueryResponse struct {
	TpGroups struct {
		TpGroup []TargetGroup `json:"TpGroup"`
	} `json:"TpGroups"`
}

type tpServiceQueryResponse struct {
	ServiceList struct {
		TpDfuServers struct {
			TpDfuServer []DFUServer `json:"TpDfuServer"`
		} `json:"TpDfuServers"`
	} `json:"ServiceList"`
}
