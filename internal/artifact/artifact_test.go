package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	Token string  `json:"token"`
	Pnl   float64 `json:"pnl"`
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rows.json")
	in := []row{{Token: "0xabc", Pnl: 1.5}, {Token: "0xdef", Pnl: -0.25}}

	require.NoError(t, WriteJSON(path, in), "parent dirs are created on demand")

	var out []row
	require.NoError(t, ReadJSON(path, &out))
	require.Equal(t, in, out)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(raw), "\n"), "artifact ends with a newline")
}

func TestReadJSONMissingFile(t *testing.T) {
	var out []row
	require.Error(t, ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &out))
}
