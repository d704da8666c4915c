package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	fedkit "github.com/fedkit/fedkit"
	"github.com/fedkit/fedkit/fedkitd"
	"github.com/fedkit/fedkit/pkg/server"
)

const (
	envPrefixHTTP = "COORDINATOR_HTTP_"
	pathEnv       = ".env"
)

type envConfig struct {
	LogLevel    string        `env:"COORDINATOR_LOG_LEVEL"    envDefault:"info"`
	InstanceID  string        `env:"COORDINATOR_INSTANCE_ID"`
	ConfigPath  string        `env:"COORDINATOR_CONFIG_PATH"`
	MQTTAddress string        `env:"COORDINATOR_MQTT_ADDRESS"`
	MQTTQoS     uint8         `env:"COORDINATOR_MQTT_QOS"     envDefault:"2"`
	MQTTTimeout time.Duration `env:"COORDINATOR_MQTT_TIMEOUT" envDefault:"30s"`
	MQTTID      string        `env:"COORDINATOR_MQTT_ID"      envDefault:"fedkit-coordinator"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	httpServerConfig := server.Config{}
	if err := env.ParseWithOptions(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		log.Fatalf("failed to load HTTP server configuration : %s", err.Error())
	}

	daemonCfg := fedkitd.Config{
		LogLevel:    cfg.LogLevel,
		InstanceID:  cfg.InstanceID,
		MQTTAddress: cfg.MQTTAddress,
		MQTTQoS:     cfg.MQTTQoS,
		MQTTTimeout: cfg.MQTTTimeout,
		MQTTID:      cfg.MQTTID,
		Server:      httpServerConfig,
	}

	if cfg.ConfigPath != "" {
		fileCfg, err := fedkit.LoadConfig(cfg.ConfigPath)
		if err != nil {
			log.Fatalf("failed to load experiment configuration : %s", err.Error())
		}
		daemonCfg.Experiment = fileCfg.Experiment
		if fileCfg.MQTT.Address != "" {
			daemonCfg.MQTTAddress = fileCfg.MQTT.Address
		}
		if fileCfg.MQTT.QoS > 0 {
			daemonCfg.MQTTQoS = uint8(fileCfg.MQTT.QoS)
		}
		if fileCfg.MQTT.ID != "" {
			daemonCfg.MQTTID = fileCfg.MQTT.ID
		}
	}

	if err := fedkitd.StartCoordinator(ctx, cancel, daemonCfg); err != nil {
		log.Fatalf("coordinator exited with error : %s", err.Error())
	}
}
