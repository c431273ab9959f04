// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adiadia/eventbench/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL",
		"ENV",
		"EVENTBENCH_DATABASE_URL",
		"EVENTBENCH_ENV",
		"EVENTBENCH_CHECKPOINTS",
		"EVENTBENCH_VARIANTS",
		"EVENTBENCH_OUTPUT_DIR",
		"EVENTBENCH_FORMATS",
		"EVENTBENCH_CHUNK_SIZE",
		"EVENTBENCH_SEED",
		"EVENTBENCH_WEBHOOK_URL",
		"EVENTBENCH_WEBHOOK_SECRET",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, []int{100, 1000, 10000}, cfg.Checkpoints)
	assert.Equal(t, DefaultVariants, cfg.Variants)
	assert.Equal(t, "results", cfg.OutputDir)
	assert.Equal(t, []string{"csv", "json", "png"}, cfg.Formats)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, 20, cfg.MaxEventsPerRun)
	assert.Equal(t, uint64(0), cfg.Seed)
	assert.Equal(t, 5*time.Minute, cfg.QueryTimeout)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Empty(t, cfg.WebhookURL)
}

func TestLoadRespectsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/bench?sslmode=disable")
	t.Setenv("ENV", "prod")
	t.Setenv("EVENTBENCH_CHECKPOINTS", "10,20")
	t.Setenv("EVENTBENCH_VARIANTS", "default_json")
	t.Setenv("EVENTBENCH_CHUNK_SIZE", "250")

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "postgres://user:pass@db:5432/bench?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, []int{10, 20}, cfg.Checkpoints)
	assert.Equal(t, []string{"default_json"}, cfg.Variants)
	assert.Equal(t, 250, cfg.ChunkSize)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bench.yaml")
	body := "checkpoints: [5, 50]\nvariants: [schema_fully_independent_tables]\nformats: [csv]\noutput_dir: out\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 50}, cfg.Checkpoints)
	assert.Equal(t, []string{"schema_fully_independent_tables"}, cfg.Variants)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, []string{"csv"}, cfg.Formats)
}

func TestLoadMissingConfigFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestValidateRejectsOutOfOrderCheckpoints(t *testing.T) {
	clearEnv(t)
	v := NewViper()
	v.Set("checkpoints", []int{1000, 100})

	_, err := Load(v, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
	assert.Contains(t, err.Error(), "ascending")
}

func TestValidateCheckpoints(t *testing.T) {
	tests := map[string]struct {
		checkpoints []int
		wantErr     bool
	}{
		"ascending":      {checkpoints: []int{100, 1000}},
		"single":         {checkpoints: []int{1}},
		"empty":          {checkpoints: nil, wantErr: true},
		"duplicate":      {checkpoints: []int{100, 100}, wantErr: true},
		"descending":     {checkpoints: []int{1000, 100}, wantErr: true},
		"zero":           {checkpoints: []int{0, 100}, wantErr: true},
		"negative":       {checkpoints: []int{-5}, wantErr: true},
		"late unordered": {checkpoints: []int{1, 2, 3, 2}, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateCheckpoints(tc.checkpoints)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrConfiguration))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateStructRules(t *testing.T) {
	valid := Config{
		DatabaseURL:     DefaultDatabaseURL,
		Env:             "dev",
		Checkpoints:     []int{100},
		Variants:        []string{"default_json"},
		OutputDir:       "results",
		Formats:         []string{"csv"},
		ChunkSize:       10,
		MaxEventsPerRun: 5,
		QueryTimeout:    time.Second,
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(c *Config){
		"missing database url": func(c *Config) { c.DatabaseURL = "" },
		"unknown format":       func(c *Config) { c.Formats = []string{"xlsx"} },
		"zero chunk size":      func(c *Config) { c.ChunkSize = 0 },
		"duplicate variant":    func(c *Config) { c.Variants = []string{"a", "a"} },
		"blank variant":        func(c *Config) { c.Variants = []string{""} },
		"missing output dir":   func(c *Config) { c.OutputDir = "" },
		"zero query timeout":   func(c *Config) { c.QueryTimeout = 0 },
		"invalid webhook url":  func(c *Config) { c.WebhookURL = "not a url" },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			cfg.Variants = append([]string(nil), valid.Variants...)
			cfg.Formats = append([]string(nil), valid.Formats...)
			mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
		})
	}
}

func TestValidateAllowsZeroVariants(t *testing.T) {
	cfg := Config{
		DatabaseURL:     DefaultDatabaseURL,
		Env:             "dev",
		Checkpoints:     []int{100},
		OutputDir:       "results",
		ChunkSize:       1,
		MaxEventsPerRun: 1,
		QueryTimeout:    time.Second,
	}
	assert.NoError(t, cfg.Validate())
}
