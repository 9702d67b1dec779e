package vendors

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/history-importer/internal/config"
	"github.com/spec-kit/history-importer/pkg/util/errorutil"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"asana", "github", "jira", "trello"}, Names())
}

func TestLookupUnknownVendor(t *testing.T) {
	_, err := Lookup("basecamp")
	require.Error(t, err)
	assert.Equal(t, errorutil.CodeValidation, errorutil.ToDomainError(err).Code)
}

func TestEveryVendorIsComplete(t *testing.T) {
	for _, name := range Names() {
		v, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, v.Adapter.Name())
		assert.NotNil(t, v.Decode)
		assert.NotNil(t, v.NewSource(config.VendorConfig{BaseURL: "http://localhost", PageSize: 10}, time.Second))
	}
}

func TestFileSourceReadsDump(t *testing.T) {
	dir := t.TempDir()
	dump := `{"gid": "t1", "stories": [{"gid": "s1", "type": "comment", "text": "hello", "created_at": "2021-05-04T10:00:00Z"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t1.json"), []byte(dump), 0o600))

	v, err := Lookup("asana")
	require.NoError(t, err)
	events, err := NewFileSource(dir, v).FetchEvents(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "hello", events[0].Comment)
}

func TestFileSourceMissingDump(t *testing.T) {
	v, err := Lookup("jira")
	require.NoError(t, err)
	_, err = NewFileSource(t.TempDir(), v).FetchEvents(context.Background(), "PROJ-404")
	assert.True(t, errorutil.IsNotFound(err))
}
