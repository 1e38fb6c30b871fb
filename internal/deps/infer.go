package deps

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shardhost/botengine/internal/model"
)

// RequirementsFilename is the Runtime A manifest file the Inferencer looks
// for and, if absent, writes.
const RequirementsFilename = "requirements.txt"

// PackageJSONFilename is the Runtime B manifest file the Inferencer looks
// for and, if absent, writes.
const PackageJSONFilename = "package.json"

func hasFile(files []*model.BotFile, name string) bool {
	for _, f := range files {
		if f.Filename == name {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// InferRuntimeA scans Runtime-A source files line by line, lower-cased,
// against RuntimeAMarkers and returns requirements.txt content. Returns
// ("", false) when there is nothing to infer (no runtime files at all).
func InferRuntimeA(files []*model.BotFile) (string, bool) {
	if hasFile(files, RequirementsFilename) {
		return "", false
	}

	pins := map[string]bool{}
	sawFile := false
	for _, f := range files {
		if !hasExtension(f.Filename, RuntimeAExtensions) {
			continue
		}
		sawFile = true
		for _, line := range strings.Split(f.Content, "\n") {
			lower := strings.ToLower(line)
			for _, m := range RuntimeAMarkers {
				if strings.Contains(lower, m.Substring) {
					pins[m.Pin] = true
				}
			}
		}
	}
	if !sawFile {
		return "", false
	}
	if len(pins) == 0 {
		pins[RuntimeABaseline] = true
	}

	sorted := make([]string, 0, len(pins))
	for p := range pins {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, "\n") + "\n", true
}

type packageManifest struct {
	Name         string            `json:"name"`
	Version      string            `json:"version"`
	Main         string            `json:"main"`
	Dependencies map[string]string `json:"dependencies"`
}

// InferRuntimeB scans Runtime-B source files against RuntimeBMarkers and
// returns a package.json manifest. Returns ("", false) when there is
// nothing to infer.
func InferRuntimeB(botName string, files []*model.BotFile) (string, bool) {
	if hasFile(files, PackageJSONFilename) {
		return "", false
	}

	deps := map[string]bool{}
	sawFile := false
	for _, f := range files {
		if !hasExtension(f.Filename, RuntimeBExtensions) {
			continue
		}
		sawFile = true
		for _, line := range strings.Split(f.Content, "\n") {
			lower := strings.ToLower(line)
			for _, m := range RuntimeBMarkers {
				if strings.Contains(lower, strings.ToLower(m.Substring)) {
					deps[m.Pin] = true
				}
			}
		}
	}
	if !sawFile {
		return "", false
	}
	if len(deps) == 0 {
		deps[RuntimeBBaseline] = true
	}

	manifest := packageManifest{
		Name:         sanitizePackageName(botName),
		Version:      "1.0.0",
		Main:         "index.js",
		Dependencies: map[string]string{},
	}
	for dep := range deps {
		version := RuntimeBVersions[dep]
		if version == "" {
			version = "latest"
		}
		manifest.Dependencies[dep] = version
	}

	body, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		// Marshaling a struct of strings/maps cannot fail; kept defensive
		// only because json.Marshal's signature always returns an error.
		return "", false
	}
	return string(body) + "\n", true
}

func sanitizePackageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '-'
		default:
			return -1
		}
	}, name)
	if name == "" {
		return "hosted-bot"
	}
	return name
}
