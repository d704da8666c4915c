package fedkit_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fedkit "github.com/fedkit/fedkit"
)

func TestLoadConfig(t *testing.T) {
	content := `
[experiment]
participants = 10
rounds = 40
c = 0.3
epochs = 2
controller = "cycle_random"
aggregator = "fedavg"
seed = 42
sequential = false
samples_per_split = 100
feature_dim = 4

[mqtt]
address = "tcp://localhost:1883"
qos = 1
id = "fedkit-coordinator"
`

	path := filepath.Join(t.TempDir(), "experiment.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := fedkit.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Experiment.Participants)
	assert.Equal(t, 40, cfg.Experiment.Rounds)
	assert.InDelta(t, 0.3, cfg.Experiment.C, 1e-12)
	assert.Equal(t, 2, cfg.Experiment.Epochs)
	assert.Equal(t, "cycle_random", cfg.Experiment.Controller)
	assert.Equal(t, "fedavg", cfg.Experiment.Aggregator)
	assert.Equal(t, int64(42), cfg.Experiment.Seed)
	assert.False(t, cfg.Experiment.Sequential)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Address)
	assert.Equal(t, 1, cfg.MQTT.QoS)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := fedkit.LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[experiment\nrounds ="), 0o644))

	_, err := fedkit.LoadConfig(path)
	assert.Error(t, err)
}
