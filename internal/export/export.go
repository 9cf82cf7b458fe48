// Package export writes the generated code of a project to disk.
//
// Every export writes the code snippets under their relative paths, a
// snapshot of the project state and a manifest listing each file with its
// blake3 digest. With Git set the result is committed to a repository in the
// export directory, initialising one when needed.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/autosdlc/autosdlc/internal/dashboard"
	"github.com/autosdlc/autosdlc/internal/errors"
	"github.com/autosdlc/autosdlc/internal/log"
	"github.com/autosdlc/autosdlc/internal/metrics"
	"github.com/autosdlc/autosdlc/pkg/autosdlc/types"
)

// Metadata file names, relative to the export directory.
const (
	MetaDir      = ".autosdlc"
	ManifestFile = ".autosdlc/manifest.yaml"
	StateFile    = ".autosdlc/project.yaml"
)

// Options configures an export.
type Options struct {
	Dir string

	Git         bool
	AuthorName  string
	AuthorEmail string

	Logger  *log.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Manifest describes one export.
type Manifest struct {
	ProjectID   string      `yaml:"project_id" json:"project_id"`
	Status      string      `yaml:"status" json:"status"`
	ExportedAt  time.Time   `yaml:"exported_at" json:"exported_at"`
	StateDigest string      `yaml:"state_digest" json:"state_digest"`
	Files       []FileEntry `yaml:"files" json:"files"`
}

// FileEntry is one exported file.
type FileEntry struct {
	Path   string `yaml:"path" json:"path"`
	Size   int    `yaml:"size" json:"size"`
	Blake3 string `yaml:"blake3" json:"blake3"`
}

// Result reports what an export wrote.
type Result struct {
	Dir      string   `yaml:"dir" json:"dir"`
	Manifest Manifest `yaml:"manifest" json:"manifest"`
	Commit   string   `yaml:"commit,omitempty" json:"commit,omitempty"`
}

// Export writes the code snippets of state into opts.Dir.
func Export(ctx context.Context, state *types.ProjectState, opts Options) (*Result, error) {
	if state == nil {
		return nil, errors.New(errors.ErrCodeNoProject, "no project to export")
	}
	files := state.CodeFiles()
	if len(files) == 0 {
		return nil, errors.NewNoArtifactsError(state.ID)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	logger = logger.Component("export").WithProject(state.ID)

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to resolve export directory", err)
	}

	digest, err := dashboard.Digest(state)
	if err != nil {
		return nil, err
	}
	manifest := Manifest{
		ProjectID:   state.ID,
		Status:      state.Status,
		ExportedAt:  opts.Now().UTC(),
		StateDigest: digest,
	}

	// Every path is checked before anything touches the disk.
	targets := make([]string, len(files))
	for i, rel := range files {
		if targets[i], err = SafeJoin(dir, rel); err != nil {
			return nil, err
		}
	}

	for i, rel := range files {
		src, _ := state.Snippet(rel)
		if err := writeFile(targets[i], []byte(src)); err != nil {
			return nil, err
		}
		manifest.Files = append(manifest.Files, FileEntry{
			Path:   filepath.ToSlash(cleanRel(rel)),
			Size:   len(src),
			Blake3: hash([]byte(src)),
		})
	}

	if err := writeYAML(filepath.Join(dir, StateFile), state); err != nil {
		return nil, err
	}
	if err := writeYAML(filepath.Join(dir, ManifestFile), manifest); err != nil {
		return nil, err
	}

	result := &Result{Dir: dir, Manifest: manifest}
	opts.Metrics.RecordExport(len(manifest.Files))
	logger.InfoContext(ctx, "artifacts exported", "dir", dir, "files", len(manifest.Files))

	if opts.Git {
		paths := make([]string, 0, len(manifest.Files)+2)
		for _, f := range manifest.Files {
			paths = append(paths, f.Path)
		}
		paths = append(paths, StateFile, ManifestFile)

		commit, err := Commit(dir, paths, CommitOptions{
			Message:     fmt.Sprintf("Export AutoSDLC project %s\n\nState digest: %s", state.ID, digest),
			AuthorName:  opts.AuthorName,
			AuthorEmail: opts.AuthorEmail,
			When:        manifest.ExportedAt,
		})
		if err != nil {
			return nil, err
		}
		result.Commit = commit
		logger.InfoContext(ctx, "export committed", "commit", commit)
	}

	return result, nil
}

// SafeJoin joins rel onto dir. It rejects paths that would leave dir or land
// in the export metadata or a git directory.
func SafeJoin(dir, rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		return "", errors.NewUnsafePathError(rel)
	}
	cleaned := cleanRel(rel)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errors.NewUnsafePathError(rel)
	}
	first, _, _ := strings.Cut(cleaned, string(filepath.Separator))
	if first == MetaDir || strings.EqualFold(first, ".git") {
		return "", errors.NewUnsafePathError(rel)
	}
	return filepath.Join(dir, cleaned), nil
}

func cleanRel(rel string) string {
	return filepath.Clean(filepath.FromSlash(rel))
}

func hash(data []byte) string {
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%x", sum[:])
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create directory for %s", path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

func writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

// ReadManifest loads the manifest of a previous export.
func ReadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", path), err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("invalid manifest %s", path), err)
	}
	return &m, nil
}

// Verify recomputes the digest of every file listed in m and returns the
// paths that are missing or changed.
func Verify(dir string, m *Manifest) ([]string, error) {
	var changed []string
	for _, f := range m.Files {
		target, err := SafeJoin(dir, f.Path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(target)
		if err != nil {
			changed = append(changed, f.Path)
			continue
		}
		if hash(data) != f.Blake3 {
			changed = append(changed, f.Path)
		}
	}
	return changed, nil
}
