package fedkit

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
)

// Config describes a full experiment: the simulated federation, the training
// hyperparameters and the optional MQTT event sink.
type Config struct {
	Experiment ExperimentConfig `toml:"experiment"`
	MQTT       MQTTConfig       `toml:"mqtt"`
}

type ExperimentConfig struct {
	Participants    int     `toml:"participants"`
	Rounds          int     `toml:"rounds"`
	C               float64 `toml:"c"`
	Epochs          int     `toml:"epochs"`
	Controller      string  `toml:"controller"`
	Aggregator      string  `toml:"aggregator"`
	Seed            int64   `toml:"seed"`
	Sequential      bool    `toml:"sequential"`
	SamplesPerSplit int     `toml:"samples_per_split"`
	FeatureDim      int     `toml:"feature_dim"`
	LearningRate    float64 `toml:"learning_rate"`
	Tolerance       float64 `toml:"tolerance"`
}

type MQTTConfig struct {
	Address string `toml:"address"`
	QoS     int    `toml:"qos"`
	ID      string `toml:"id"`
}

// LoadConfig reads an experiment description from a TOML file. Fields left
// out of the file keep their zero values; validation happens at service
// construction, not here.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}
