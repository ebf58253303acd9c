package spray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinLogicalName(t *testing.T) {
	cases := []struct {
		prefix, target, want string
	}{
		{"", "people.json", "people.json"},
		{"scope", "people.json", "scope::people.json"},
		{"scope::", "people.json", "scope::people.json"},
		{"scope", "::people.json", "scope::people.json"},
		{"a::b", "c", "a::b::c"},
		{"scope", "", "scope"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, JoinLogicalName(tc.prefix, tc.target), "%q + %q", tc.prefix, tc.target)
	}
}

func TestWorkunitPathAndURL(t *testing.T) {
	assert.Equal(t, "/dfuworkunits/D20240101-000001", WorkunitPath("D20240101-000001"))
	assert.Equal(t,
		"http://esp:8010/esp/files/index.html#/dfuworkunits/D1",
		WorkunitURL("http://esp:8010/", "D1"))
}

func TestDefaultValues(t *testing.T) {
	v := DefaultValues()
	assert.Equal(t, FormatASCII, v.SourceFormat)
	assert.Equal(t, "1", v.SourceFormat.Key())
	assert.True(t, v.NoCommon)
	assert.True(t, v.DelayedReplication)
	assert.False(t, v.Overwrite)
	assert.False(t, v.Replicate)
	assert.False(t, v.NoSplit)
	assert.False(t, v.Compress)
	assert.False(t, v.FailIfNoSourceFile)
	assert.Empty(t, v.SelectedFiles)
}

func TestBuildRequestsCopiesSharedFieldsPerRow(t *testing.T) {
	v := DefaultValues()
	v.DestGroup = "mythor"
	v.DFUServerQueue = "dfuserver_queue"
	v.NamePrefix = "imports::"
	v.Overwrite = true
	v.ExpireDays = " 7 "
	v.SelectedFiles = []SelectedFileRow{
		{TargetName: "a.json", TargetRowPath: "/", SourceFile: "/var/lib/dz/a.json", SourceIP: "10.0.0.1"},
		{TargetName: "b.json", TargetRowPath: "/rows", SourceFile: "/var/lib/dz/b.json", SourceIP: "10.0.0.2"},
	}

	reqs := BuildRequests(v)
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		assert.Equal(t, "mythor", r.DestGroup)
		assert.Equal(t, "dfuserver_queue", r.DFUServerQueue)
		assert.Equal(t, "imports::", r.NamePrefix)
		assert.Equal(t, "1", r.SourceFormat)
		assert.True(t, r.Overwrite)
		assert.True(t, r.NoCommon)
		assert.True(t, r.DelayedReplication)
		assert.True(t, r.IsJSON)
		assert.Equal(t, "7", r.ExpireDays)
	}
	assert.Equal(t, "imports::a.json", reqs[0].DestLogicalName)
	assert.Equal(t, "/var/lib/dz/a.json", reqs[0].SourcePath)
	assert.Equal(t, "10.0.0.1", reqs[0].SourceIP)
	assert.Equal(t, "/", reqs[0].SourceRowTag)
	assert.Equal(t, "imports::b.json", reqs[1].DestLogicalName)
	assert.Equal(t, "/rows", reqs[1].SourceRowTag)
	assert.Equal(t, "10.0.0.2", reqs[1].SourceIP)
}

func TestParseSourceFormat(t *testing.T) {
	f, err := ParseSourceFormat("5")
	require.NoError(t, err)
	assert.Equal(t, FormatUTF16LE, f)

	f, err = ParseSourceFormat("utf-8n")
	require.NoError(t, err)
	assert.Equal(t, FormatUTF8N, f)

	f, err = ParseSourceFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatUnset, f)

	_, err = ParseSourceFormat("10")
	assert.Error(t, err)
	_, err = ParseSourceFormat("EBCDIC")
	assert.Error(t, err)

	assert.Len(t, SourceFormats(), 9)
	assert.Equal(t, "UTF-32BE", FormatUTF32BE.String())
	assert.Equal(t, "9", FormatUTF32BE.Key())
}
