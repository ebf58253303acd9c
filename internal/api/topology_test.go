package api

import (
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetGroupsSortedAndCached(t *testing.T) {
	var calls atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/WsTopology/TpGroupQuery.json", r.URL.Path)
		w.Write(espResponse("TpGroupQueryResponse", map[string]any{
			"TpGroups": map[string]any{"TpGroup": []map[string]string{
				{"Name": "thor_b", "Kind": "Thor"},
				{"Name": "hthor", "Kind": "hthor"},
			}},
		}))
	})

	groups, err := client.TargetGroups(t.Context())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "hthor", groups[0].Name)
	assert.Equal(t, "thor_b", groups[1].Name)

	_, err = client.TargetGroups(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSprayQueuesSkipsServersWithoutQueue(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r, "TpServiceQuery")
		assert.Equal(t, "ALLSERVICES", body["Type"])
		w.Write(espResponse("TpServiceQueryResponse", map[string]any{
			"ServiceList": map[string]any{"TpDfuServers": map[string]any{"TpDfuServer": []map[string]string{
				{"Name": "dfuserver", "Queue": "dfuserver_queue"},
				{"Name": "idle"},
			}}},
		}))
	})

	queues, err := client.SprayQueues(t.Context())
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, "dfuserver_queue", queues[0].Queue)
}

func TestLookupsRetryServerErrors(t *testing.T) {
	var calls atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(espResponse("TpGroupQueryResponse", map[string]any{
			"TpGroups": map[string]any{"TpGroup": []map[string]string{{"Name": "mythor"}}},
		}))
	})

	groups, err := client.TargetGroups(t.Context())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLookupErrorIsNotCached(t *testing.T) {
	var calls atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"Exceptions":{"Exception":[{"Code":1,"Message":"topology unavailable"}]}}`))
	})

	_, err := client.TargetGroups(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topology unavailable")
	_, err = client.TargetGroups(t.Context())
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
