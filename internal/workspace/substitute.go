package workspace

import (
	"fmt"
	"strings"

	"github.com/shardhost/botengine/internal/model"
)

const placeholderToken = "YOUR_BOT_TOKEN"

// substitutionPatterns returns the ordered list of literal substrings to
// replace with credential. Patterns as data: this is a plain table, not a
// parser, favoring fixed substring lists over a tokenizer for this kind of
// bootstrap/log-classification matching.
func substitutionPatterns(credential string) []string {
	literal := fmt.Sprintf("%q", credential) // double-quoted Go-escaped literal

	patterns := []string{
		// (a) the bare/quoted placeholder itself
		`"` + placeholderToken + `"`,
		`'` + placeholderToken + `'`,
		placeholderToken,
	}

	// (b) Runtime-B (event-loop runtime) environment lookups
	for _, key := range []string{"DISCORD_TOKEN", "BOT_TOKEN", "TOKEN"} {
		patterns = append(patterns,
			`process.env.`+key,
			`process.env['`+key+`']`,
			`process.env["`+key+`"]`,
		)
	}

	// (c) Runtime-A (scripting runtime) environment lookups, DISCORD_TOKEN only
	patterns = append(patterns,
		`os.environ['DISCORD_TOKEN']`,
		`os.environ["DISCORD_TOKEN"]`,
		`os.environ.get('DISCORD_TOKEN')`,
		`os.environ.get("DISCORD_TOKEN")`,
		`os.getenv('DISCORD_TOKEN')`,
		`os.getenv("DISCORD_TOKEN")`,
	)

	_ = literal
	return patterns
}

// substitute applies every pattern, replacing matches with the double-quoted
// credential literal. Patterns are tried longest-first so e.g. the quoted
// placeholder forms are consumed before the bare form would otherwise eat
// into them.
func substitute(content, credential string) string {
	literal := fmt.Sprintf("%q", credential)
	patterns := substitutionPatterns(credential)

	// longest-first avoids the bare-token pattern partially matching inside
	// an already-quoted occurrence before the quoted pattern gets a turn.
	ordered := append([]string{}, patterns...)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if len(ordered[j]) > len(ordered[i]) {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	out := content
	for _, pat := range ordered {
		out = strings.ReplaceAll(out, pat, literal)
	}
	return out
}

// Materialize applies credential substitution to every file's content for
// the given bot, independent of where the files end up on disk. Exposed
// separately from Materializer.Materialize so tests can assert on the text
// transform without touching the filesystem.
func Materialize(files []*model.BotFile, credential string) map[string]string {
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Filename] = substitute(f.Content, credential)
	}
	return out
}
