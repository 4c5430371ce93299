// File: internal/exclusion/exclusion_test.go
package exclusion

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadCreatesTemplateWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusions.json")

	set := Load(path, zap.NewNop())

	// The template is created on disk and its placeholders are loaded.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entries []string
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Equal(t, []string{"friend_one", "brand_abc"}, entries)
	assert.True(t, set.Contains("brand_abc"))
}

func TestLoadNormalizesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusions.json")
	require.NoError(t, os.WriteFile(path, []byte(`["@Friend_One", "  BRAND_abc ", ""]`), 0o644))

	set := Load(path, zap.NewNop())
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("friend_one"))
	assert.True(t, set.Contains("@BRAND_ABC"), "lookup normalizes too")
	assert.False(t, set.Contains("someone_else"))
}

func TestLoadToleratesUnparseableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclusions.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o644))

	set := Load(path, zap.NewNop())
	assert.Equal(t, 0, set.Len(), "parse failure degrades to an empty set")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice", Normalize("  @Alice "))
	assert.Equal(t, "bob", Normalize("BOB"))
	assert.Equal(t, "", Normalize("@"))
}
