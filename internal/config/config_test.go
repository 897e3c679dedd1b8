package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap/zapcore"
)

func TestLoad(t *testing.T) {
	Convey("Load", t, func() {
		// Keep a real user config out of the picture
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())

		Convey("Defaults", func() {
			c, err := Load("", nil)
			So(err, ShouldBeNil)
			So(c.GetIdleTimeout(), ShouldEqual, 2*time.Second)
			So(c.GetWheelStep(), ShouldEqual, 12)
			So(c.Backend(), ShouldEqual, BackendMPV)
			So(c.LogLevel(), ShouldEqual, zapcore.InfoLevel)
			So(c.MediaKeysEnabled(), ShouldBeTrue)
			So(c.ResolverBaseURL(), ShouldBeEmpty)
			So(c.File(), ShouldBeEmpty)

			s := c.GetDefaultSettings()
			So(s.Quality, ShouldEqual, domain.QualityHigh)
			So(s.Volume, ShouldEqual, 100)
			So(s.IsMuted, ShouldBeFalse)
			So(s.WindowState, ShouldEqual, domain.WindowNormal)
		})

		Convey("The layout database lives under the home directory", func() {
			home, _ := os.UserHomeDir()
			c, err := Load("", nil)
			So(err, ShouldBeNil)
			So(c.LayoutDBPath(), ShouldEqual, filepath.Join(home, ".local/share/multiview/layout.db"))
		})

		Convey("Environment variables use the MULTIVIEW prefix", func() {
			t.Setenv("MULTIVIEW_CONTROLS_IDLE_TIMEOUT", "5s")
			t.Setenv("MULTIVIEW_PLAYBACK_DEFAULT_QUALITY", "potato")
			t.Setenv("MULTIVIEW_PLAYBACK_DEFAULT_VOLUME", "400")
			t.Setenv("MULTIVIEW_RESOLVER_TOKEN", "secret")

			c, err := Load("", nil)
			So(err, ShouldBeNil)
			So(c.GetIdleTimeout(), ShouldEqual, 5*time.Second)
			So(c.GetSubscriptionToken(), ShouldEqual, "secret")
			s := c.GetDefaultSettings()
			So(s.Quality, ShouldEqual, domain.QualityLowest)
			So(s.Volume, ShouldEqual, domain.MaxVolume)
		})

		Convey("A config file is read and overrides win", func() {
			file := filepath.Join(t.TempDir(), "multiview.toml")
			content := "backend = \"memory\"\n\n[playback]\nstart_muted = true\n\n[log]\nlevel = \"debug\"\n"
			So(os.WriteFile(file, []byte(content), 0o600), ShouldBeNil)

			c, err := Load(file, map[string]any{KeyLogLevel: "warn"})
			So(err, ShouldBeNil)
			So(c.File(), ShouldEqual, file)
			So(c.Backend(), ShouldEqual, BackendMemory)
			So(c.GetDefaultSettings().IsMuted, ShouldBeTrue)
			So(c.LogLevel(), ShouldEqual, zapcore.WarnLevel)
		})

		Convey("A missing explicit config file is an error", func() {
			_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), nil)
			So(err, ShouldNotBeNil)
		})

		Convey("Invalid values are rejected", func() {
			for key, value := range map[string]any{
				KeyBackend:        "vlc",
				KeyDefaultQuality: "ultra",
				KeyLogLevel:       "loud",
				KeyWheelStep:      0,
				KeyIdleTimeout:    "-1s",
			} {
				_, err := Load("", map[string]any{key: value})
				So(err, ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer converts dots to underscores", func() {
			So(EnvKeyReplacer.Replace("controls.idle_timeout"), ShouldEqual, "controls_idle_timeout")
		})
	})
}
