package ui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/sprayctl/internal/api"
)

// fakeESP serves the FileSpray and WsTopology calls the TUI makes.
type fakeESP struct {
	mu     sync.Mutex
	sprays []map[string]any
	calls  map[string]int

	// sprayWUID maps a sourcePath to the wuid returned for it. Paths
	// listed in sprayFail get an ESP exception instead.
	sprayWUID map[string]string
	sprayFail map[string]string
	state     string
	lookupErr bool
}

func newFakeESP() *fakeESP {
	return &fakeESP{
		calls:     map[string]int{},
		sprayWUID: map[string]string{},
		sprayFail: map[string]string{},
		state:     "finished",
	}
}

func (f *fakeESP) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeESP) sprayed() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.sprays...)
}

func (f *fakeESP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimSuffix(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], ".json")
	raw, _ := io.ReadAll(r.Body)
	var envelope map[string]map[string]any
	_ = json.Unmarshal(raw, &envelope)
	body := envelope[method]

	f.mu.Lock()
	f.calls[method]++
	lookupErr := f.lookupErr
	state := f.state
	f.mu.Unlock()

	switch method {
	case "TpGroupQuery":
		if lookupErr {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeESP(w, "TpGroupQueryResponse", map[string]any{
			"TpGroups": map[string]any{"TpGroup": []map[string]string{
				{"Name": "mythor", "Kind": "Thor"},
				{"Name": "hthor", "Kind": "hthor"},
			}},
		})
	case "TpServiceQuery":
		if lookupErr {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeESP(w, "TpServiceQueryResponse", map[string]any{
			"ServiceList": map[string]any{"TpDfuServers": map[string]any{"TpDfuServer": []map[string]string{
				{"Name": "dfuserver", "Queue": "dfuserver_queue"},
			}}},
		})
	case "DropZoneFiles":
		writeESP(w, "DropZoneFilesResponse", map[string]any{
			"DropZones": map[string]any{"DropZone": []map[string]string{
				{"Name": "mydropzone", "NetAddress": "10.0.0.5", "Path": "/var/lib/HPCCSystems/mydropzone", "Linux": "true"},
			}},
			"Files": map[string]any{"PhysicalFileStruct": []map[string]any{
				{"name": "people.json", "isDir": false, "filesize": 2048, "modifiedtime": "2026-01-02 10:00:00"},
				{"name": "orders.json", "isDir": false, "filesize": 512, "modifiedtime": "2026-01-02 11:00:00"},
				{"name": "notes.txt", "isDir": false, "filesize": 12, "modifiedtime": "2026-01-02 12:00:00"},
				{"name": "archive", "isDir": true},
			}},
		})
	case "FileList":
		writeESP(w, "FileListResponse", map[string]any{
			"files": map[string]any{"PhysicalFileStruct": []map[string]any{
				{"name": "old.json", "isDir": false, "filesize": 100, "modifiedtime": "2025-12-31 09:00:00"},
			}},
		})
	case "SprayVariable":
		f.mu.Lock()
		f.sprays = append(f.sprays, body)
		source, _ := body["sourcePath"].(string)
		wuid := f.sprayWUID[source]
		failMsg, failed := f.sprayFail[source]
		f.mu.Unlock()
		if failed {
			_, _ = w.Write([]byte(`{"Exceptions":{"Source":"FileSpray","Exception":[{"Code":-1,"Message":"` + failMsg + `"}]}}`))
			return
		}
		writeESP(w, "SprayResponse", map[string]string{"wuid": wuid})
	case "GetDFUWorkunit":
		wuid, _ := body["wuid"].(string)
		writeESP(w, "GetDFUWorkunitResponse", map[string]any{
			"result": map[string]any{
				"ID":                wuid,
				"JobName":           "people.json",
				"StateMessage":      state,
				"PercentDone":       100,
				"DestLogicalName":   "scope::people.json",
				"DestGroupName":     "mythor",
				"Queue":             "dfuserver_queue",
				"SourceLogicalName": "/var/lib/HPCCSystems/mydropzone/people.json",
			},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeESP(w http.ResponseWriter, key string, payload any) {
	_ = json.NewEncoder(w).Encode(map[string]any{key: payload})
}

func testClient(t *testing.T, handler http.Handler) (*httptest.Server, *api.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, api.NewClient(srv.URL, "admin", "secret", api.WithLookupRetries(0))
}

// runCmd executes cmd and returns its message, flattening batches.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m ImportJSONModel, text string) ImportJSONModel {
	t.Helper()
	for _, r := range text {
		var cmd tea.Cmd
		m, cmd = m.Update(keyRunes(string(r)))
		require.Nil(t, cmd)
	}
	return m
}
