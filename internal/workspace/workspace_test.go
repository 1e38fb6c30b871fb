package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shardhost/botengine/internal/model"
)

func TestSubstituteAllForms(t *testing.T) {
	credential := "sekret-token"
	src := strings.Join([]string{
		`bare := ` + placeholderToken,
		`single := '` + placeholderToken + `'`,
		`double := "` + placeholderToken + `"`,
		`client.run(os.environ['DISCORD_TOKEN'])`,
		`client.run(os.environ.get("DISCORD_TOKEN"))`,
		`client.login(process.env.DISCORD_TOKEN)`,
		`client.login(process.env['BOT_TOKEN'])`,
	}, "\n")

	out := substitute(src, credential)
	if strings.Contains(out, placeholderToken) {
		t.Fatalf("placeholder survived substitution: %s", out)
	}
	if strings.Contains(out, "os.environ") || strings.Contains(out, "process.env") {
		t.Fatalf("env-lookup idiom survived substitution: %s", out)
	}
	wantCount := strings.Count(out, `"sekret-token"`)
	if wantCount != 7 {
		t.Fatalf("expected 7 occurrences of the substituted literal, got %d in: %s", wantCount, out)
	}
}

func TestMaterializeRefusesEmptyBot(t *testing.T) {
	m := New(t.TempDir())
	if err := m.Materialize("b1", nil, "c"); err == nil {
		t.Fatal("expected error for zero files")
	}
}

func TestMaterializeWritesSubstitutedContent(t *testing.T) {
	root := t.TempDir()
	m := New(root)
	files := []*model.BotFile{
		{Filename: "bot.py", Content: `client.run("YOUR_BOT_TOKEN")`},
	}
	if err := m.Materialize("b1", files, "T"); err != nil {
		t.Fatalf("materialize: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "b1", "bot.py"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `client.run("T")` {
		t.Fatalf("unexpected content: %s", data)
	}
}

func TestMaterializeRejectsTraversal(t *testing.T) {
	m := New(t.TempDir())
	files := []*model.BotFile{{Filename: "../evil.py", Content: "x"}}
	if err := m.Materialize("b1", files, "T"); err == nil {
		t.Fatal("expected traversal to be refused")
	}
}

func TestMaterializeRejectsUnknownExtension(t *testing.T) {
	m := New(t.TempDir())
	files := []*model.BotFile{{Filename: "payload.sh", Content: "x"}}
	if err := m.Materialize("b1", files, "T"); err == nil {
		t.Fatal("expected unknown extension to be refused")
	}
}
