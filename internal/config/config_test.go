package config

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := qt.New(t)
		cfg, err := Load("")
		c.Assert(err, qt.IsNil)
		c.Assert(cfg, qt.Equals, Config{
			LogLevel:    "info",
			Capacity:    16,
			Producers:   4,
			Messages:    100,
			UrgentEvery: 10,
		})
	})

	t.Run("file", func(t *testing.T) {
		c := qt.New(t)
		path := filepath.Join(t.TempDir(), "mailroom.json")
		err := os.WriteFile(path, []byte(`{"logLevel": "debug", "capacity": 3}`), 0o644)
		c.Assert(err, qt.IsNil)

		cfg, err := Load(path)
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.LogLevel, qt.Equals, "debug")
		c.Assert(cfg.Capacity, qt.Equals, 3)
		c.Assert(cfg.Producers, qt.Equals, 4)
	})

	t.Run("env", func(t *testing.T) {
		c := qt.New(t)
		t.Setenv("MAILROOM_PRODUCERS", "7")
		cfg, err := Load("")
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Producers, qt.Equals, 7)
	})

	t.Run("missing-file", func(t *testing.T) {
		c := qt.New(t)
		_, err := Load("/nonexistent/mailroom.json")
		c.Assert(err, qt.ErrorMatches, "error reading config file: .*")
	})

	t.Run("invalid", func(t *testing.T) {
		c := qt.New(t)
		t.Setenv("MAILROOM_CAPACITY", "0")
		_, err := Load("")
		c.Assert(err, qt.ErrorMatches, "capacity must be positive, got 0")
	})
}
