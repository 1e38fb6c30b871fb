// Package workspace materializes a bot's persisted files onto a per-bot
// directory on disk, substituting credential placeholders as it writes.
// The substitution logic mirrors a log redactor run in reverse: scrubbing
// vs. injecting a secret into a byte stream.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shardhost/botengine/internal/boterr"
	"github.com/shardhost/botengine/internal/model"
)

// AllowedExtensions is the launch-time allow-list; the upload-time
// collaborator enforces its own copy of this list, this one is what the
// Materializer refuses at materialization time.
var AllowedExtensions = map[string]bool{
	".py":   true,
	".txt":  true,
	".json": true,
	".js":   true,
	".mjs":  true,
	".cjs":  true,
	".env":  true,
	".cfg":  true,
	".yml":  true,
	".yaml": true,
}

type Materializer struct {
	Root string // workspace_root
}

func New(root string) *Materializer {
	return &Materializer{Root: root}
}

// Dir returns the per-bot workspace directory, materialized or not.
func (m *Materializer) Dir(botID string) string {
	return filepath.Join(m.Root, botID)
}

// Materialize writes one file per model.BotFile under Dir(botID), applying
// credential substitution to each file's content. It refuses bots with zero
// files and wraps any I/O failure as a WorkspaceError.
func (m *Materializer) Materialize(botID string, files []*model.BotFile, credential string) error {
	if len(files) == 0 {
		return boterr.Workspace(botID, "bot has no files to materialize", nil)
	}

	dir := m.Dir(botID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return boterr.Workspace(botID, "failed to create workspace root", err)
	}

	substituted := Materialize(files, credential)
	for _, f := range files {
		if err := validateFilename(f.Filename); err != nil {
			return boterr.Workspace(botID, fmt.Sprintf("refusing unknown path %q", f.Filename), err)
		}

		dest := filepath.Join(dir, f.Filename)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return boterr.Workspace(botID, "failed to create ancestor directories", err)
		}
		if err := os.WriteFile(dest, []byte(substituted[f.Filename]), 0o644); err != nil {
			return boterr.Workspace(botID, fmt.Sprintf("failed to write %q", f.Filename), err)
		}
	}
	return nil
}

// Remove best-effort deletes the bot's workspace directory recursively;
// callers log a failure rather than treat it as fatal.
func (m *Materializer) Remove(botID string) error {
	return os.RemoveAll(m.Dir(botID))
}

// WriteGeneratedFile writes content directly into the bot's workspace
// without credential substitution, for manifests the Dependency
// Inferencer synthesizes at launch time.
func (m *Materializer) WriteGeneratedFile(botID, filename, content string) error {
	dest := filepath.Join(m.Dir(botID), filename)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return boterr.Workspace(botID, "failed to create ancestor directories", err)
	}
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return boterr.Workspace(botID, fmt.Sprintf("failed to write generated %q", filename), err)
	}
	return nil
}

// HasFile reports whether filename exists within the materialized workspace.
func (m *Materializer) HasFile(botID, filename string) bool {
	_, err := os.Stat(filepath.Join(m.Dir(botID), filename))
	return err == nil
}

func validateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("empty filename")
	}
	clean := filepath.Clean(name)
	if clean != name || clean == ".." || filepath.IsAbs(clean) {
		return fmt.Errorf("path traversal in filename %q", name)
	}
	for _, part := range splitPath(clean) {
		if part == ".." {
			return fmt.Errorf("path traversal in filename %q", name)
		}
	}
	ext := filepath.Ext(clean)
	if !AllowedExtensions[ext] {
		return fmt.Errorf("extension %q not in allow-list", ext)
	}
	return nil
}

func splitPath(p string) []string {
	var parts []string
	for {
		dir, file := filepath.Split(p)
		if file != "" {
			parts = append([]string{file}, parts...)
		}
		dir = filepath.Clean(dir)
		if dir == "." || dir == p || dir == string(filepath.Separator) {
			break
		}
		p = dir
	}
	return parts
}
