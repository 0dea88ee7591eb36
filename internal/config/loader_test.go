package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/levelup/heist/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.HeistBaseSeconds, convey.ShouldEqual, 180)
				convey.So(cfg.MaxSafeAttempts, convey.ShouldEqual, 3)
				convey.So(cfg.SweepIntervalSeconds, convey.ShouldEqual, 15)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LEVELUP_ADDR", ":8080")
			_ = os.Setenv("LEVELUP_HEIST_BASE_SECONDS", "120")
			_ = os.Setenv("LEVELUP_MAX_SAFE_ATTEMPTS", "5")
			_ = os.Setenv("LEVELUP_SWEEP_INTERVAL_SECONDS", "30")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.HeistBaseSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.MaxSafeAttempts, convey.ShouldEqual, 5)
				convey.So(cfg.SweepIntervalSeconds, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
heist_base_seconds: 240
success_take_rate: 0.4
snapshot_interval_seconds: 30
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("LEVELUP_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.HeistBaseSeconds, convey.ShouldEqual, 240)
				convey.So(cfg.SuccessTakeRate, convey.ShouldEqual, 0.4)
				convey.So(cfg.SnapshotIntervalSeconds, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When env vars and YAML file both set a key", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\n")

			_ = os.Setenv("LEVELUP_CONFIG", tmpFile)
			_ = os.Setenv("LEVELUP_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("LEVELUP_MAX_SAFE_ATTEMPTS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_safe_attempts")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("LEVELUP_CONFIG", "/nonexistent/heist.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"LEVELUP_CONFIG",
		"LEVELUP_ADDR",
		"LEVELUP_HEIST_BASE_SECONDS",
		"LEVELUP_MAX_SAFE_ATTEMPTS",
		"LEVELUP_SWEEP_INTERVAL_SECONDS",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
