package pg

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMigrationName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename    string
		wantVersion int64
		wantName    string
		wantErr     bool
	}{
		{filename: "0001_dose_logs.sql", wantVersion: 1, wantName: "dose_logs"},
		{filename: "0012_add_index.sql", wantVersion: 12, wantName: "add_index"},
		{filename: "dose_logs.sql", wantErr: true},
		{filename: "0001.sql", wantErr: true},
		{filename: "0000_zero.sql", wantErr: true},
		{filename: "abc_name.sql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, err := parseMigrationName(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestLoadMigrations_SortedWithChecksums(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/0002_second.sql": {Data: []byte("SELECT 2;")},
		"migrations/0001_first.sql":  {Data: []byte("SELECT 1;")},
		"migrations/README.md":       {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, int64(1), migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Name)
	assert.Equal(t, "SELECT 1;", migrations[0].SQL)
	assert.Len(t, migrations[0].Checksum, 64)
	assert.NotEqual(t, migrations[0].Checksum, migrations[1].Checksum)
}

func TestLoadMigrations_DuplicateVersion(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"migrations/0001_a.sql": {Data: []byte("SELECT 1;")},
		"migrations/0001_b.sql": {Data: []byte("SELECT 2;")},
	}

	_, err := loadMigrations(fsys)
	assert.ErrorContains(t, err, "duplicate migration version 1")
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	migrations, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, "dose_logs", migrations[0].Name)
}
