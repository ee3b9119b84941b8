package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and cwd at fresh temp dirs so no real config leaks in
func isolate(t *testing.T) (home, work string) {
	t.Helper()
	home = t.TempDir()
	work = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(work)
	return home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 101, cfg.Students)
	assert.Equal(t, 10, cfg.ClassCount)
	assert.True(t, cfg.OptScore)
	assert.True(t, cfg.OptGender)
	assert.Equal(t, 10*time.Millisecond, cfg.StepInterval)
	assert.Equal(t, "/", cfg.Route)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestLoadProjectOverridesGlobal(t *testing.T) {
	home, work := isolate(t)
	writeFile(t, filepath.Join(home, ".class-assigner", "config.yaml"), "students: 40\nclass_count: 5\n")
	writeFile(t, filepath.Join(work, ".class-assigner", "config.yaml"), "class_count: 8\nopt_gender: false\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Students)
	assert.Equal(t, 8, cfg.ClassCount)
	assert.False(t, cfg.OptGender)
	assert.True(t, cfg.OptScore)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	_, work := isolate(t)
	writeFile(t, filepath.Join(work, ".class-assigner", "config.yaml"), "class_count: 8\n")
	t.Setenv("CLASSASSIGN_CLASS_COUNT", "12")
	t.Setenv("CLASSASSIGN_LOG_LEVEL", "debug")
	t.Setenv("CLASSASSIGN_STEP_INTERVAL", "25ms")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.ClassCount)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 25*time.Millisecond, cfg.StepInterval)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	isolate(t)
	t.Setenv("CLASSASSIGN_STUDENTS", "50")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("students", 101, "")
	flags.Int64("seed", 0, "")
	flags.String("log-file", "", "")
	require.NoError(t, flags.Parse([]string{"--students", "7", "--seed", "99", "--log-file", "run.log"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Students)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, "run.log", cfg.Log.File)
}

func TestLoadUnsetFlagsKeepLowerLayers(t *testing.T) {
	isolate(t)
	t.Setenv("CLASSASSIGN_STUDENTS", "50")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("students", 101, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Students)
}

func TestLoadExplicitPath(t *testing.T) {
	_, work := isolate(t)
	path := filepath.Join(work, "custom.yaml")
	writeFile(t, path, "route: /info\ndebug: true\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/info", cfg.Route)
	assert.True(t, cfg.Debug)

	_, err = Load(filepath.Join(work, "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoadRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"class count too small", "CLASSASSIGN_CLASS_COUNT", "2"},
		{"class count too large", "CLASSASSIGN_CLASS_COUNT", "31"},
		{"negative students", "CLASSASSIGN_STUDENTS", "-1"},
		{"unknown log level", "CLASSASSIGN_LOG_LEVEL", "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.val)

			_, err := Load("", nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClassCount = 4
	cfg.OptScore = false

	s := cfg.Settings()
	assert.Equal(t, 4, s.ClassCount)
	assert.False(t, s.OptScore)
	assert.True(t, s.OptGender)
}
