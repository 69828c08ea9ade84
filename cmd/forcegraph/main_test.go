package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/forcegraph/internal/config"
)

func TestLoggerContext(t *testing.T) {
	assert.Same(t, log.Default(), loggerFromContext(context.Background()))

	var buf bytes.Buffer
	l := newLogger(&buf, log.DebugLevel)
	ctx := withLogger(context.Background(), l)
	assert.Same(t, l, loggerFromContext(ctx))

	loggerFromContext(ctx).Debug("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestQuietLogger(t *testing.T) {
	var buf bytes.Buffer
	q := quiet(newLogger(&buf, log.DebugLevel))
	q.Warn("dropped")
	q.Error("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func sceneCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addSceneFlags(cmd)
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(sceneCmd(t))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  nodes: 50\n  topology: ring\nphysics:\n  damping: 0.5\n"), 0644))

	cmd := sceneCmd(t, "--damping", "0.7", "--serial")
	configFile = path
	defer func() { configFile = "" }()

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Scene.Nodes)
	assert.Equal(t, "ring", cfg.Scene.Topology)
	assert.Equal(t, 0.7, cfg.Physics.Damping)
	assert.False(t, cfg.Engine.Accelerate)
}

func TestLoadConfig_Preset(t *testing.T) {
	cmd := sceneCmd(t, "--nodes", "10")
	preset = "small"
	defer func() { preset = "" }()

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Scene.Nodes)
	assert.Equal(t, "ring", cfg.Scene.Topology)
	assert.Equal(t, 300, cfg.Run.Steps)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(sceneCmd(t, "--damping", "2"))
	assert.ErrorContains(t, err, "Physics.Damping")

	cmd := sceneCmd(t)
	preset = "nope"
	defer func() { preset = "" }()
	_, err = loadConfig(cmd)
	assert.Error(t, err)
}
