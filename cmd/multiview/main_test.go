package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/genricoloni/multiview/internal/config"
	"github.com/genricoloni/multiview/internal/domain"
	"github.com/genricoloni/multiview/internal/engine"
	"github.com/samber/mo"
	"go.uber.org/fx"
	"go.uber.org/zap/zapcore"
)

// testFlags keeps the app away from mpv, D-Bus and the user's files
func testFlags(t *testing.T) Flags {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return Flags{Overrides: map[string]any{
		config.KeyBackend:          config.BackendMemory,
		config.KeyMediaKeysEnabled: false,
		config.KeyLayoutDBPath:     filepath.Join(t.TempDir(), "layout.db"),
		config.KeyLogLevel:         "error",
	}}
}

// TestAppGraphValidity verifies that the dependency graph is resolvable.
// This test will fail if you forget an fx.Provide for a required interface.
func TestAppGraphValidity(t *testing.T) {
	if err := fx.ValidateApp(AppOptions); err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

// TestNewLogger specifically verifies the logger configuration
func TestNewLogger(t *testing.T) {
	flags := testFlags(t)
	flags.Overrides[config.KeyLogLevel] = "debug"
	cfg, err := newConfig(flags)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Debug level should be enabled")
	}
}

// TestEndToEndStartup tries a real startup/stop with the headless backend.
// We use fx.NopLogger to avoid cluttering test output
func TestEndToEndStartup(t *testing.T) {
	var eng *engine.Engine
	app := fx.New(
		AppOptions,
		fx.Replace(testFlags(t)),
		fx.Populate(&eng),
		fx.NopLogger,
	)

	if err := app.Start(t.Context()); err != nil {
		t.Fatalf("App failed to start: %v", err)
	}

	content := domain.ContentRef{
		ID:      "https://example.com/live/onboard-1.m3u8",
		SyncUID: "race",
		Title:   "onboard-1.m3u8",
		Name:    "onboard-1",
		Type:    domain.ContentTypeLive,
		IsLive:  true,
	}
	if _, err := eng.OpenSession(t.Context(), content, mo.None[domain.WindowSettings]()); err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}
	if n := len(eng.Sessions()); n != 1 {
		t.Fatalf("Expected 1 open session, got %d", n)
	}

	if err := app.Stop(t.Context()); err != nil {
		t.Fatalf("App failed to stop: %v", err)
	}
	if n := len(eng.Sessions()); n != 0 {
		t.Errorf("Expected sessions closed on stop, got %d", n)
	}
}

func TestContentRefs(t *testing.T) {
	tests := []struct {
		name     string
		opts     playOptions
		args     []string
		wantType domain.ContentType
		wantErr  bool
	}{
		{
			name:     "Lower case type",
			opts:     playOptions{contentType: "channel", syncUID: "s1"},
			args:     []string{"https://cdn.example.com/a/cam1.m3u8", "/tmp/cam2.mkv"},
			wantType: domain.ContentTypeChannel,
		},
		{
			name:    "Unknown type",
			opts:    playOptions{contentType: "podcast"},
			args:    []string{"a"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs, err := contentRefs(tt.opts, tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("contentRefs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(refs) != len(tt.args) {
				t.Fatalf("Expected %d refs, got %d", len(tt.args), len(refs))
			}
			for i, ref := range refs {
				if ref.ID != tt.args[i] || ref.Name != tt.args[i] {
					t.Errorf("ref %d: ID/Name = %q/%q, want %q", i, ref.ID, ref.Name, tt.args[i])
				}
				if ref.Type != tt.wantType || ref.SyncUID != tt.opts.syncUID {
					t.Errorf("ref %d: got type %q sync %q", i, ref.Type, ref.SyncUID)
				}
			}
		})
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := map[string]string{
		"https://cdn.example.com/a/cam1.m3u8": "cam1.m3u8",
		"https://cdn.example.com/":            "https://cdn.example.com/",
		"/videos/race.mkv":                    "race.mkv",
		"race.mkv":                            "race.mkv",
	}
	for in, want := range tests {
		if got := displayTitle(in); got != want {
			t.Errorf("displayTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFlagsFrom(t *testing.T) {
	root := newRootCmd()
	play, _, err := root.Find([]string{"play"})
	if err != nil {
		t.Fatalf("play command not found: %v", err)
	}
	if err := play.ParseFlags([]string{"--config", "multiview.toml", "--backend", "memory"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}

	flags := flagsFrom(play)
	if flags.ConfigFile != "multiview.toml" {
		t.Errorf("ConfigFile = %q", flags.ConfigFile)
	}
	if flags.Overrides[config.KeyBackend] != "memory" {
		t.Errorf("backend override = %v", flags.Overrides[config.KeyBackend])
	}
	if _, ok := flags.Overrides[config.KeyLogLevel]; ok {
		t.Error("Unset flags must not override the configuration")
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--short"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != version+"\n" {
		t.Errorf("version output = %q", out.String())
	}
}
