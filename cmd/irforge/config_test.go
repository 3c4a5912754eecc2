package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"irforge/internal/irwriter"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecodeConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"full", "[output]\ndir = \"out\"\ndialect = \"3.2\"\n[generate]\nsuites = [\"phi\"]\njobs = 2\ncache = false\n", ""},
		{"output only", "[output]\n", ""},
		{"missing output", "[generate]\njobs = 1\n", "missing [output]"},
		{"unknown key", "[output]\ndir = \"out\"\ncolour = true\n", "unknown keys: output.colour"},
		{"negative jobs", "[output]\n[generate]\njobs = -1\n", "must not be negative"},
		{"bad toml", "[output\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.body)
			_, err := decodeConfig(path)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "[output]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := findConfig(nested)
	if err != nil || !ok {
		t.Fatalf("findConfig = %q, %v, %v", got, ok, err)
	}
	wantAbs, _ := filepath.Abs(want)
	if got != wantAbs {
		t.Fatalf("found %q, want %q", got, wantAbs)
	}
}

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "generate"}
	cmd.Flags().StringP("out", "o", defaultOutputDir, "")
	cmd.Flags().StringP("dialect", "d", "3.8", "")
	cmd.Flags().IntP("jobs", "j", 0, "")
	cmd.Flags().Bool("no-cache", false, "")
	return cmd
}

func TestResolveSettingsPrecedence(t *testing.T) {
	root := t.TempDir()
	cfgPath := writeConfig(t, root, "[output]\ndir = \"fixtures\"\ndialect = \"3.2\"\n[generate]\nsuites = [\"phi\", \"vararg\"]\njobs = 3\ncache = false\n")
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("file", func(t *testing.T) {
		t.Setenv(dialectEnv, "")
		s, err := resolveSettings(newSettingsCmd(), nil, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if s.Dir != filepath.Join(root, "fixtures") || s.Dialect != irwriter.V32 || s.Jobs != 3 || s.Cache {
			t.Fatalf("settings = %+v", s)
		}
		if len(s.Suites) != 2 || s.Suites[0].Name != "phi" || s.Suites[1].Name != "vararg" {
			t.Fatalf("suites = %+v", s.Suites)
		}
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv(dialectEnv, "v3.8")
		s, err := resolveSettings(newSettingsCmd(), nil, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if s.Dialect != irwriter.V38 {
			t.Fatalf("dialect = %s", s.Dialect)
		}
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv(dialectEnv, "3.8")
		cmd := newSettingsCmd()
		if err := cmd.ParseFlags([]string{"-d", "3.2", "-o", "elsewhere", "-j", "1", "--no-cache=false"}); err != nil {
			t.Fatal(err)
		}
		s, err := resolveSettings(cmd, []string{"fibonacci"}, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if s.Dialect != irwriter.V32 || s.Dir != "elsewhere" || s.Jobs != 1 || !s.Cache {
			t.Fatalf("settings = %+v", s)
		}
		if len(s.Suites) != 1 || s.Suites[0].Name != "fibonacci" {
			t.Fatalf("suites = %+v", s.Suites)
		}
	})
}

func TestResolveSettingsDefaults(t *testing.T) {
	t.Setenv(dialectEnv, "")
	s, err := resolveSettings(newSettingsCmd(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Dir != defaultOutputDir || s.Dialect != irwriter.V38 || !s.Cache || s.Jobs != 0 {
		t.Fatalf("settings = %+v", s)
	}
	if len(s.Suites) != 12 {
		t.Fatalf("got %d suites", len(s.Suites))
	}

	t.Setenv(dialectEnv, "4.0")
	if _, err := resolveSettings(newSettingsCmd(), nil, nil); err == nil {
		t.Fatal("expected an error for an unknown dialect")
	}
	t.Setenv(dialectEnv, "")
	if _, err := resolveSettings(newSettingsCmd(), []string{"nope"}, nil); err == nil {
		t.Fatal("expected an error for an unknown suite")
	}
}

func TestModes(t *testing.T) {
	for _, v := range []string{"", "AUTO", "on", " off "} {
		if _, err := readUIMode(v); err != nil {
			t.Errorf("readUIMode(%q): %v", v, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected error for --ui=sometimes")
	}
	if !shouldUseTUI(uiModeOn, true) || shouldUseTUI(uiModeOff, false) || shouldUseTUI(uiModeAuto, true) {
		t.Error("unexpected shouldUseTUI result")
	}
	if err := applyColorMode("rainbow"); err == nil {
		t.Error("expected error for --color=rainbow")
	}
}
