package hmm_test

import (
	"os"
	"testing"

	"github.com/grailbio/hmmprune/hmm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSimpleJSONRoundTrips(t *testing.T) {
	doc := `{
		"T": 1,
		"Msc": [[0,0,0,0], [1,1,1,1]],
		"Isc": [[0,0,0,0], [-1,-1,-1,-1]],
		"Tsc": [[0,-2,-2,-2,-2,-2,-2,-0.1], [0,-2,-2,-2,-2,-2,-2,-3]],
		"Xsc": [[-0.1,-2],[0,0],[0,0],[-0.1,-2],[-2,-2]],
		"Local": true,
		"TauVal": 0,
		"LambdaVal": 0.693,
		"Compo": [0.25,0.25,0.25,0.25],
		"NameVal": "demo"
	}`

	f := writeTemp(t, doc)
	p, err := hmm.LoadSimpleJSON(f)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Length())
	assert.Equal(t, "demo", p.Name())
	assert.True(t, p.IsLocal())
	assert.Equal(t, 1.0, p.MatchEmission(1, 0))
}

func TestLoadSimpleJSONReportsMissingFile(t *testing.T) {
	_, err := hmm.LoadSimpleJSON("/nonexistent/path/profile.json")
	require.Error(t, err)
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "profile-*.json")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}
