package universe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDedupsAndSorts(t *testing.T) {
	t.Parallel()

	u := New([]string{"BBB", "AAA", "BBB", " ", "CCC", ""})
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, u.Tickers())
	assert.Equal(t, 3, u.Len())
	assert.True(t, u.Contains("AAA"))
	assert.False(t, u.Contains("ZZZ"))
}

func TestTickersReturnsCopy(t *testing.T) {
	t.Parallel()

	u := New([]string{"AAA", "BBB"})
	got := u.Tickers()
	got[0] = "mutated"
	assert.Equal(t, []string{"AAA", "BBB"}, u.Tickers())
}

func TestLoadFileJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "universe.json")
	data, err := json.Marshal([]string{"BBB", "AAA"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	u, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, u.Tickers())
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	t.Parallel()

	_, err := LoadFile("universe.csv")
	assert.ErrorContains(t, err, "unsupported extension")
}
