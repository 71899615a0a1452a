package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestConfigEnabledAndURL(t *testing.T) {
	require.False(t, Config{}.Enabled())
	require.NoError(t, Config{}.Validate())

	cfg := Config{Host: "db", User: "bot", Password: "p@ss word", Name: "reviews"}
	require.True(t, cfg.Enabled())
	require.NoError(t, cfg.Validate())
	require.Equal(t, "postgres://bot:p%40ss%20word@db:5432/reviews?sslmode=disable", cfg.URL())
	require.NotContains(t, cfg.Redacted(), "p%40ss")

	err := Config{Host: "db"}.Validate()
	require.EqualError(t, err, "missing required config: database.user, database.name")
}

func TestMigrationFileHelpers(t *testing.T) {
	src := fstest.MapFS{
		"0002_index.up.sql":     {Data: []byte("--")},
		"0001_reviews.up.sql":   {Data: []byte("--")},
		"0001_reviews.down.sql": {Data: []byte("--")},
		"README.md":             {Data: []byte("x")},
	}
	files := listMigrationFiles(src)
	require.Equal(t, []string{"0001_reviews.up.sql", "0002_index.up.sql"}, files)

	require.Equal(t, uint64(2), parseVersion("0002_index.up.sql"))
	require.Zero(t, parseVersion("nope.sql"))

	require.Equal(t, []string{"0002_index.up.sql"}, selectApplied(files, 1, 2))
	require.Empty(t, selectApplied(files, 2, 2))
	require.Len(t, selectApplied(files, 0, 2), 2)
}
