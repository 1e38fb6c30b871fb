package supervisor

import (
	"testing"

	"github.com/shardhost/botengine/internal/model"
)

func TestResolveMainEntryPrefersDeclared(t *testing.T) {
	files := []*model.BotFile{{Filename: "weird.py"}, {Filename: "main.py"}}
	got, err := resolveMainEntry(model.RuntimeA, "weird.py", files)
	if err != nil || got != "weird.py" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveMainEntryFallsBackToPreferredList(t *testing.T) {
	files := []*model.BotFile{{Filename: "helpers.py"}, {Filename: "bot.py"}}
	got, err := resolveMainEntry(model.RuntimeA, "", files)
	if err != nil || got != "bot.py" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveMainEntryFallsBackToFirstExtensionMatch(t *testing.T) {
	files := []*model.BotFile{{Filename: "README.txt"}, {Filename: "weird_name.py"}}
	got, err := resolveMainEntry(model.RuntimeA, "", files)
	if err != nil || got != "weird_name.py" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveMainEntryFailsWithNoCandidates(t *testing.T) {
	files := []*model.BotFile{{Filename: "README.txt"}}
	if _, err := resolveMainEntry(model.RuntimeA, "", files); err == nil {
		t.Fatal("expected an error")
	}
}

func TestResolveMainEntryRuntimeB(t *testing.T) {
	files := []*model.BotFile{{Filename: "utils.js"}, {Filename: "index.js"}}
	got, err := resolveMainEntry(model.RuntimeB, "", files)
	if err != nil || got != "index.js" {
		t.Fatalf("got %q, %v", got, err)
	}
}
