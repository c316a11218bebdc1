package eventservices

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/skew-entropy/src/eventmodels"
)

func TestExportEntropyCsv(t *testing.T) {
	points := []eventmodels.EntropyPoint{
		{Date: mustDate("2024-07-01"), Entropy: 0.5, Skewness: -0.25},
		{Date: mustDate("2024-07-02"), Entropy: 0.75, Skewness: 0.125},
	}

	path := filepath.Join(t.TempDir(), "out", "entropy.csv")
	require.NoError(t, ExportEntropyCsv(path, points))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Entropy,Skewness", lines[0])
	assert.Equal(t, "2024-07-01,0.5,-0.25", lines[1])

	imported, err := ImportEntropyCsv(path)
	require.NoError(t, err)
	assert.Equal(t, points, imported)
}

func TestImportEntropyCsvInvalidDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entropy.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Entropy,Skewness\n07/01/2024,0.5,0.1\n"), 0644))

	_, err := ImportEntropyCsv(path)
	assert.Error(t, err)
}
