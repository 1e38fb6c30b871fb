package deps

import (
	"strings"
	"testing"

	"github.com/shardhost/botengine/internal/model"
)

func TestInferRuntimeAMarkerRoundTrip(t *testing.T) {
	for _, m := range RuntimeAMarkers {
		files := []*model.BotFile{{Filename: "bot.py", Content: "x = 1\n" + m.Substring + "\ny = 2"}}
		manifest, ok := InferRuntimeA(files)
		if !ok {
			t.Fatalf("marker %q: expected inference", m.Substring)
		}
		if !strings.Contains(manifest, m.Pin) {
			t.Fatalf("marker %q: expected pin %q in manifest, got %q", m.Substring, m.Pin, manifest)
		}
	}
}

func TestInferRuntimeABaselineWhenNoMarkers(t *testing.T) {
	files := []*model.BotFile{{Filename: "bot.py", Content: "print('hello world')"}}
	manifest, ok := InferRuntimeA(files)
	if !ok {
		t.Fatal("expected inference")
	}
	if !strings.Contains(manifest, RuntimeABaseline) {
		t.Fatalf("expected baseline pin, got %q", manifest)
	}
}

func TestInferRuntimeANoFilesNoManifest(t *testing.T) {
	files := []*model.BotFile{{Filename: "README.txt", Content: "hi"}}
	if _, ok := InferRuntimeA(files); ok {
		t.Fatal("expected no inference for a workspace with no runtime files")
	}
}

func TestInferRuntimeASkippedWhenManifestPresent(t *testing.T) {
	files := []*model.BotFile{
		{Filename: "bot.py", Content: "import discord"},
		{Filename: RequirementsFilename, Content: "discord.py==2.0.0"},
	}
	if _, ok := InferRuntimeA(files); ok {
		t.Fatal("expected inference to be skipped when requirements.txt exists")
	}
}

func TestInferRuntimeBProducesValidManifest(t *testing.T) {
	files := []*model.BotFile{{Filename: "index.js", Content: "const { Client } = require('discord.js');\nconst axios = require('axios');"}}
	manifest, ok := InferRuntimeB("My Cool Bot", files)
	if !ok {
		t.Fatal("expected inference")
	}
	if !strings.Contains(manifest, `"discord.js"`) || !strings.Contains(manifest, `"axios"`) {
		t.Fatalf("expected both deps in manifest, got %q", manifest)
	}
	if !strings.Contains(manifest, `"main": "index.js"`) {
		t.Fatalf("expected main entry, got %q", manifest)
	}
}
