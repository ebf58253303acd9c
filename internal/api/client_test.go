package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "admin", "secret", WithLookupRetries(1))
	return srv, client
}

func espResponse(key string, payload any) []byte {
	b, _ := json.Marshal(map[string]any{key: payload})
	return b
}

// decodeBody returns the inner request object sent for method.
func decodeBody(t *testing.T, r *http.Request, method string) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var envelope map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &envelope))
	body, ok := envelope[method]
	require.True(t, ok, "body not wrapped in %s: %s", method, raw)
	return body
}

func TestCallSendsBasicAuthAndJSON(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write(espResponse("SprayResponse", map[string]string{"wuid": "D1"}))
	})

	resp, err := client.SprayVariable(t.Context(), SprayRequest{})
	require.NoError(t, err)
	assert.Equal(t, "D1", resp.WUID)
}

func TestCallTopLevelException(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Exceptions":{"Source":"FileSpray","Exception":[{"Code":20050,"Message":"Access denied"}]}}`))
	})

	_, err := client.SprayVariable(t.Context(), SprayRequest{})
	require.Error(t, err)
	var espErr *ESPError
	require.ErrorAs(t, err, &espErr)
	assert.Equal(t, "20050", espErr.Code)
	assert.Equal(t, "FileSpray", espErr.Source)
	assert.Equal(t, "FileSpray 20050: Access denied", err.Error())
}

func TestCallNestedException(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SprayResponse":{"Exceptions":{"Exception":[{"Code":"-1","Message":"bad source"},{"Message":"second"}]}}}`))
	})

	_, err := client.SprayVariable(t.Context(), SprayRequest{})
	require.Error(t, err)
	assert.True(t, IsESPError(err))
	assert.Equal(t, "-1: bad source; second", err.Error())
}

func TestHTTPError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorized"))
	})

	_, err := client.SprayVariable(t.Context(), SprayRequest{})
	require.Error(t, err)
	var espErr *ESPError
	require.ErrorAs(t, err, &espErr)
	assert.Equal(t, http.StatusUnauthorized, espErr.Status)
	assert.Equal(t, "HTTP 401: Unauthorized", err.Error())
}

func TestClientHandlesMalformedJSON(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not-json"))
	})

	_, err := client.SprayVariable(t.Context(), SprayRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestESPErrorFormatting(t *testing.T) {
	assert.Equal(t, "unknown error", (&ESPError{}).Error())
	assert.Equal(t, "c: m", (&ESPError{Code: "c", Message: " m "}).Error())
	assert.Equal(t, "plain", (&ESPError{Source: "S", Message: "plain"}).Error())
	assert.False(t, IsESPError(assert.AnError))
}
