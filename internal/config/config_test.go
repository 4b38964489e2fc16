package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tacogips/cpre/internal/expr"
)

var valueComparer = cmp.Comparer(func(a, b expr.Value) bool { return a.Equal(b) && a.Kind() == b.Kind() })

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.EncodingIn != "UTF-8" || cfg.EncodingOut != "UTF-8" {
		t.Errorf("Expected UTF-8 encodings, got %s/%s", cfg.EncodingIn, cfg.EncodingOut)
	}
	if !cfg.ContentStableWrite {
		t.Error("Content-stable write should be enabled by default")
	}
	if cfg.StripComments || cfg.PreserveFileAttributes || cfg.AllowWhitespaceBeforePrefix || cfg.CopyExcluded {
		t.Error("Optional behaviours should be disabled by default")
	}
	if cfg.MaxIncludeDepth != 10 {
		t.Errorf("Expected MaxIncludeDepth=10, got %d", cfg.MaxIncludeDepth)
	}
	if cfg.Workers != 1 {
		t.Errorf("Expected Workers=1, got %d", cfg.Workers)
	}
	if diff := cmp.Diff([]string{"xml"}, cfg.ExcludedExtensions); diff != "" {
		t.Errorf("ExcludedExtensions mismatch (-want +got):\n%s", diff)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Globals["a"] = expr.Int(1)

	clone := cfg.Clone()
	clone.Sources[0] = "changed"
	clone.Globals["b"] = expr.Int(2)

	if cfg.Sources[0] != "." {
		t.Error("Clone shares the Sources slice")
	}
	if _, ok := cfg.Globals["b"]; ok {
		t.Error("Clone shares the Globals map")
	}
}

const jsonConfig = `{
  "sources": ["src/main/java", "src/main/resources"],
  "destination": "target/preprocessed",
  "encoding_in": "ISO-8859-1",
  "content_stable_write": false,
  "strip_comments": true,
  "workers": 4,
  "globals": {
    "debug": true,
    "version": "1.2.0",
    "build": 42,
    "ratio": 0.5,
    "targets": ["linux", "darwin"]
  }
}`

const hclConfig = `
sources              = ["src/main/java", "src/main/resources"]
destination          = "target/preprocessed"
encoding_in          = "ISO-8859-1"
content_stable_write = false
strip_comments       = true
workers              = 4

globals {
  debug   = true
  version = "1.2.0"
  build   = 42
  ratio   = 0.5
  targets = ["linux", "darwin"]
}
`

func TestLoad(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json", file: "cpre.json", content: jsonConfig},
		{name: "hcl", file: "cpre.hcl", content: hclConfig},
	}

	wantGlobals := map[string]expr.Value{
		"debug":   expr.Bool(true),
		"version": expr.String("1.2.0"),
		"build":   expr.Int(42),
		"ratio":   expr.Float(0.5),
		"targets": expr.Set("darwin", "linux"),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loader.Load(writeConfig(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}

			if diff := cmp.Diff([]string{"src/main/java", "src/main/resources"}, cfg.Sources); diff != "" {
				t.Errorf("Sources mismatch (-want +got):\n%s", diff)
			}
			if cfg.Destination != "target/preprocessed" {
				t.Errorf("Expected Destination=target/preprocessed, got %s", cfg.Destination)
			}
			if cfg.EncodingIn != "ISO-8859-1" {
				t.Errorf("Expected EncodingIn=ISO-8859-1, got %s", cfg.EncodingIn)
			}
			if cfg.EncodingOut != "UTF-8" {
				t.Errorf("Absent EncodingOut should keep its default, got %s", cfg.EncodingOut)
			}
			if cfg.ContentStableWrite {
				t.Error("Explicit false must override the true default")
			}
			if !cfg.StripComments {
				t.Error("Expected StripComments=true")
			}
			if cfg.Workers != 4 {
				t.Errorf("Expected Workers=4, got %d", cfg.Workers)
			}
			if cfg.MaxIncludeDepth != 10 {
				t.Errorf("Absent MaxIncludeDepth should keep its default, got %d", cfg.MaxIncludeDepth)
			}
			if diff := cmp.Diff(wantGlobals, cfg.Globals, valueComparer); diff != "" {
				t.Errorf("Globals mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_JSONAndHCLProduceSameGlobals(t *testing.T) {
	loader := NewLoader()
	fromJSON, err := loader.Load(writeConfig(t, "cpre.json", jsonConfig))
	if err != nil {
		t.Fatal(err)
	}
	fromHCL, err := loader.Load(writeConfig(t, "cpre.hcl", hclConfig))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(fromJSON, fromHCL, valueComparer); diff != "" {
		t.Errorf("JSON and HCL configurations differ (-json +hcl):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name      string
		file      string
		content   string
		wantType  ConfigErrorType
		wantField string
	}{
		{name: "invalid JSON", file: "c.json", content: "{ invalid json }", wantType: ConfigInvalid},
		{name: "invalid HCL", file: "c.hcl", content: "sources = [", wantType: ConfigInvalid},
		{name: "unknown HCL attribute", file: "c.hcl", content: `colour = "red"`, wantType: ConfigInvalid},
		{name: "HCL wrong type", file: "c.hcl", content: `workers = "many"`, wantType: ConfigInvalid},
		{name: "JSON null global", file: "c.json", content: `{"globals": {"x": null}}`, wantType: ConfigInvalid, wantField: "globals.x"},
		{name: "JSON nested global", file: "c.json", content: `{"globals": {"x": {"y": 1}}}`, wantType: ConfigInvalid, wantField: "globals.x"},
		{name: "JSON mixed set", file: "c.json", content: `{"globals": {"x": ["a", 1]}}`, wantType: ConfigInvalid, wantField: "globals.x"},
		{name: "HCL object global", file: "c.hcl", content: "globals {\n  x = { y = 1 }\n}\n", wantType: ConfigInvalid, wantField: "globals.x"},
		{name: "HCL block in globals", file: "c.hcl", content: "globals {\n  inner {\n  }\n}\n", wantType: ConfigInvalid},
		{name: "unsupported extension", file: "c.yaml", content: "sources: []", wantType: ConfigUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(writeConfig(t, tt.file, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Expected ConfigError, got %T: %v", err, err)
			}
			if cfgErr.Type != tt.wantType {
				t.Errorf("Expected %v, got %v (%v)", tt.wantType, cfgErr.Type, err)
			}
			if tt.wantField != "" && cfgErr.Field != tt.wantField {
				t.Errorf("Expected field %s, got %s", tt.wantField, cfgErr.Field)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("/nonexistent/cpre.json")
		cfgErr, ok := err.(*ConfigError)
		if !ok {
			t.Fatalf("Expected ConfigError, got %T", err)
		}
		if cfgErr.Type != ConfigNotFound {
			t.Errorf("Expected ConfigNotFound, got %v", cfgErr.Type)
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	loader := NewLoader()

	t.Run("returns defaults for missing file", func(t *testing.T) {
		cfg, err := loader.LoadOrDefault("/nonexistent/cpre.hcl")
		if err != nil {
			t.Fatalf("LoadOrDefault should not error on missing file: %v", err)
		}
		if cfg.MaxIncludeDepth != 10 {
			t.Errorf("Expected default MaxIncludeDepth=10, got %d", cfg.MaxIncludeDepth)
		}
	})

	t.Run("returns defaults for empty path", func(t *testing.T) {
		cfg, err := loader.LoadOrDefault("")
		if err != nil || cfg == nil {
			t.Fatalf("LoadOrDefault(\"\") = %v, %v", cfg, err)
		}
	})

	t.Run("propagates syntax errors", func(t *testing.T) {
		if _, err := loader.LoadOrDefault(writeConfig(t, "cpre.json", "{")); err == nil {
			t.Error("Expected syntax error")
		}
	})
}

func TestMergeConfig(t *testing.T) {
	cfg := &Config{Destination: "out", Workers: 3}
	mergeConfig(cfg, DefaultConfig())

	if cfg.Destination != "out" || cfg.Workers != 3 {
		t.Error("mergeConfig must keep set values")
	}
	if len(cfg.Sources) == 0 || cfg.EncodingIn == "" || cfg.MaxIncludeDepth != 10 || cfg.Globals == nil {
		t.Errorf("mergeConfig must fill zero values, got %+v", cfg)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	if got := FindConfigFile(dir); got != "" {
		t.Errorf("Expected no config file, got %s", got)
	}

	jsonPath := filepath.Join(dir, JSONConfigFile)
	if err := os.WriteFile(jsonPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(dir); got != jsonPath {
		t.Errorf("Expected %s, got %s", jsonPath, got)
	}

	hclPath := filepath.Join(dir, HCLConfigFile)
	if err := os.WriteFile(hclPath, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(dir); got != hclPath {
		t.Errorf("HCL should take precedence, got %s", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/cpre.hcl")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "cpre.hcl") {
		t.Errorf("ExpandPath(~/cpre.hcl) = %s", got)
	}

	got, err = ExpandPath("rel")
	if err != nil || !filepath.IsAbs(got) {
		t.Errorf("ExpandPath(rel) = %s, %v", got, err)
	}
}
