package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  port: /dev/ttyUSB0\nrobot:\n  addr: bench:1110\n"), 0o644))

	fs := rootCmd.Flags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--robot", "10.1.1.1:1110"}))
	t.Cleanup(func() { configFile = "" })

	cfg, err := loadConfig(fs)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	require.Equal(t, "10.1.1.1:1110", cfg.Robot.Addr)
	require.Equal(t, 115200, cfg.Serial.Baud)
}
