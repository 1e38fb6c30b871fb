package supervisor

import (
	"fmt"
	"path/filepath"

	"github.com/shardhost/botengine/internal/model"
)

var preferredMainA = []string{"main.py", "bot.py", "app.py", "run.py", "__main__.py", "start.py"}
var preferredMainB = []string{"index.js", "main.js", "app.js", "bot.js", "start.js", "server.js"}

// resolveMainEntry picks the workspace-relative filename to execute:
// the stored main filename if it exists in the workspace, else the first
// match from the runtime's preferred list, else the first file with the
// runtime's extension, else an error.
func resolveMainEntry(runtime model.Runtime, declared string, files []*model.BotFile) (string, error) {
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f.Filename] = true
	}

	if declared != "" && present[declared] {
		return declared, nil
	}

	var preferred []string
	var ext string
	switch runtime {
	case model.RuntimeA:
		preferred, ext = preferredMainA, ".py"
	default:
		preferred, ext = preferredMainB, ".js"
	}

	for _, name := range preferred {
		if present[name] {
			return name, nil
		}
	}

	for _, f := range files {
		if filepath.Ext(f.Filename) == ext {
			return f.Filename, nil
		}
	}

	return "", fmt.Errorf("no main entry file found for runtime %s", runtime)
}
