package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const locationsFixture = `{
  "topAreas": [
    {
      "areas": [
        {
          "cities": [
            {"id": 4000, "name": "חיפה"},
            {"id": 9500, "name": " נשר "}
          ]
        },
        {
          "cities": [
            {"id": 5000, "name": "תל אביב יפו"}
          ]
        }
      ]
    }
  ]
}`

func writeLocations(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "locations.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLocationResolver(t *testing.T) {
	resolver, err := NewLocationResolver(writeLocations(t, locationsFixture))
	require.NoError(t, err)

	id, ok := resolver.ResolveCity("חיפה")
	require.True(t, ok)
	require.Equal(t, 4000, id)

	// Names are trimmed on both sides of the lookup.
	id, ok = resolver.ResolveCity("  נשר ")
	require.True(t, ok)
	require.Equal(t, 9500, id)

	_, ok = resolver.ResolveCity("עיר שלא קיימת")
	require.False(t, ok)
}

func TestLocationResolverBadFile(t *testing.T) {
	_, err := NewLocationResolver(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = NewLocationResolver(writeLocations(t, "not json"))
	require.Error(t, err)
}
