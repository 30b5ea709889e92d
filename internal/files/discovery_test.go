package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gdxtoolbox/internal/errors"
)

// writeFiles creates the named files in dir, one minute apart
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("test content"), 0644))
		modTime := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}
}

func TestNewDiscovery(t *testing.T) {
	discovery := NewDiscovery("/test/base", ".GDX", "xlsx")

	assert.Equal(t, "/test/base", discovery.BasePath())
	assert.True(t, discovery.extensions["gdx"])
	assert.True(t, discovery.extensions["xlsx"])
}

func TestFindArchives(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "only archives",
			files:    []string{"policy.gdx", "baseline.GDX", "export.xlsx"},
			expected: []string{"baseline.GDX", "export.xlsx", "policy.gdx"},
		},
		{
			name:     "mixed file types",
			files:    []string{"run.gdx", "notes.txt", "run.lst", "table.csv"},
			expected: []string{"run.gdx"},
		},
		{
			name:     "no archives",
			files:    []string{"notes.txt", "run.lst"},
			expected: []string{},
		},
		{
			name:     "empty directory",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.gdx"), 0755))

			archives, err := NewDiscovery(dir, "gdx", "xlsx").FindArchives()
			require.NoError(t, err)

			names := make([]string, 0, len(archives))
			for _, a := range archives {
				names = append(names, a.Name)
				assert.Equal(t, filepath.Join(dir, a.Name), a.Path)
				assert.Greater(t, a.Size, int64(0))
				assert.False(t, a.ModTime.IsZero())
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindArchives_FileInfo(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "baseline.GDX")

	archives, err := NewDiscovery(dir, "gdx").FindArchives()
	require.NoError(t, err)
	require.Len(t, archives, 1)

	assert.Equal(t, "baseline", archives[0].Scenario)
	assert.Equal(t, "gdx", archives[0].Format)
}

func TestFindArchives_MissingDirectory(t *testing.T) {
	archives, err := NewDiscovery(filepath.Join(t.TempDir(), "absent"), "gdx").FindArchives()

	require.NoError(t, err)
	assert.Empty(t, archives)
}

func TestFindArchives_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "file.gdx")

	_, err := NewDiscovery(filepath.Join(dir, "file.gdx"), "gdx").FindArchives()

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeRead))
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "baseline.gdx", "baseline.xlsx", "policy.xlsx", "notes.txt")
	discovery := NewDiscovery(dir, "gdx", "xlsx")

	tests := []struct {
		name     string
		lookup   string
		wantFile string
		wantErr  apperrors.ErrorType
	}{
		{name: "file name", lookup: "policy.xlsx", wantFile: "policy.xlsx"},
		{name: "scenario name prefers first in name order", lookup: "baseline", wantFile: "baseline.gdx"},
		{name: "explicit xlsx", lookup: "baseline.xlsx", wantFile: "baseline.xlsx"},
		{name: "missing archive", lookup: "absent.gdx", wantErr: apperrors.ErrTypeNotFound},
		{name: "missing scenario", lookup: "absent", wantErr: apperrors.ErrTypeNotFound},
		{name: "unsupported extension", lookup: "notes.txt", wantErr: apperrors.ErrTypeNotFound},
		{name: "path traversal", lookup: "../baseline.gdx", wantErr: apperrors.ErrTypeValidation},
		{name: "parent", lookup: "..", wantErr: apperrors.ErrTypeValidation},
		{name: "empty", lookup: "", wantErr: apperrors.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := discovery.Lookup(tt.lookup)
			if tt.wantErr != "" {
				assert.True(t, apperrors.IsType(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, file.Name)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), file.Path)
		})
	}
}

func BenchmarkFindArchives(b *testing.B) {
	dir := b.TempDir()
	for i := 0; i < 200; i++ {
		name := filepath.Join(dir, "run_"+time.Duration(i).String()+".gdx")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			b.Fatal(err)
		}
	}
	discovery := NewDiscovery(dir, "gdx")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := discovery.FindArchives(); err != nil {
			b.Fatal(err)
		}
	}
}
