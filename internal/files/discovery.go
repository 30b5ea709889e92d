package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "gdxtoolbox/internal/errors"
)

// FileInfo represents information about a discovered result archive
type FileInfo struct {
	Path     string    `json:"-"`
	Name     string    `json:"name"`
	Scenario string    `json:"scenario"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modified"`
}

// Discovery finds result archives in a results directory
type Discovery struct {
	basePath   string
	extensions map[string]bool
}

// NewDiscovery creates a discovery rooted at basePath that accepts the given
// archive extensions (without the dot, case-insensitive)
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}
	return &Discovery{basePath: basePath, extensions: exts}
}

// BasePath returns the directory searched by FindArchives
func (d *Discovery) BasePath() string {
	return d.basePath
}

// FindArchives lists the supported archives in the base directory, sorted by
// file name
func (d *Discovery) FindArchives() ([]FileInfo, error) {
	entries, err := os.ReadDir(d.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []FileInfo{}, nil
		}
		return nil, apperrors.NewReadError(fmt.Sprintf("failed to read directory %s", d.basePath), err)
	}

	files := []FileInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !d.supported(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, d.fileInfo(filepath.Join(d.basePath, entry.Name()), info))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// Lookup resolves a scenario by file name ("run.gdx") or by scenario name
// ("run"). A bare scenario name matches the first supported archive in name
// order.
func (d *Discovery) Lookup(name string) (FileInfo, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return FileInfo{}, apperrors.NewAppValidationError(fmt.Sprintf("invalid scenario name %q", name))
	}

	if d.supported(name) {
		path := filepath.Join(d.basePath, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return FileInfo{}, apperrors.NewNotFoundError(fmt.Sprintf("scenario %s", name))
		}
		return d.fileInfo(path, info), nil
	}

	archives, err := d.FindArchives()
	if err != nil {
		return FileInfo{}, err
	}
	for _, file := range archives {
		if file.Scenario == name {
			return file, nil
		}
	}
	return FileInfo{}, apperrors.NewNotFoundError(fmt.Sprintf("scenario %s", name))
}

func (d *Discovery) supported(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return ext != "" && d.extensions[ext]
}

func (d *Discovery) fileInfo(path string, info os.FileInfo) FileInfo {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return FileInfo{
		Path:     path,
		Name:     name,
		Scenario: strings.TrimSuffix(name, ext),
		Format:   strings.ToLower(strings.TrimPrefix(ext, ".")),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
	}
}
