package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultWritesToLogsDir(t *testing.T) {
	dir := t.TempDir()

	logger, err := New("client", "", dir)
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "client.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "client")
}

func TestNewFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")
	configPath := filepath.Join(dir, "log_config.json")

	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"level": "debug",
		"encoding": "json",
		"outputPaths": ["`+logPath+`"],
		"errorOutputPaths": ["stderr"],
		"encoderConfig": {
			"messageKey": "msg",
			"levelKey": "level",
			"levelEncoder": "lowercase"
		}
	}`), 0o644))

	logger, err := New("server", configPath, "")
	require.NoError(t, err)

	logger.Debug("configured")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "configured")
}

func TestNewRejectsMissingConfig(t *testing.T) {
	_, err := New("server", filepath.Join(t.TempDir(), "absent.json"), "")
	require.Error(t, err)
}

func TestNewRejectsBrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log_config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := New("server", path, "")
	require.Error(t, err)
}
