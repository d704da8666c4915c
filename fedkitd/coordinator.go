// Package fedkitd holds the cobra commands of the fedkit daemon and CLI.
package fedkitd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	fedkit "github.com/fedkit/fedkit"
	"github.com/fedkit/fedkit/pkg/server"
)

var configPath string

var coordinatorCmd = []cobra.Command{
	{
		Use:   "start",
		Short: "Start coordinator",
		Long:  `Start coordinator.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := Config{
				LogLevel:    "info",
				MQTTQoS:     2,
				MQTTTimeout: 30 * time.Second,
				MQTTID:      "fedkit-coordinator",
				Server: server.Config{
					Host: "localhost",
					Port: "7070",
				},
			}

			if configPath != "" {
				fileCfg, err := fedkit.LoadConfig(configPath)
				if err != nil {
					cmd.PrintErrf("failed to load config: %s", err.Error())

					return
				}
				cfg.Experiment = fileCfg.Experiment
				cfg.MQTTAddress = fileCfg.MQTT.Address
				if fileCfg.MQTT.QoS > 0 {
					cfg.MQTTQoS = uint8(fileCfg.MQTT.QoS)
				}
				if fileCfg.MQTT.ID != "" {
					cfg.MQTTID = fileCfg.MQTT.ID
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			if err := StartCoordinator(ctx, cancel, cfg); err != nil {
				cmd.PrintErrf("failed to start coordinator: %s", err.Error())
			}
			cancel()
		},
	},
}

func NewCoordinatorCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "coordinator [start]",
		Short: "Coordinator management",
		Long:  `Start the federated training coordinator.`,
	}

	for i := range coordinatorCmd {
		cmd.AddCommand(&coordinatorCmd[i])
	}

	cmd.PersistentFlags().StringVarP(
		&configPath,
		"config",
		"c",
		"",
		"Path to a TOML experiment config",
	)

	return &cmd
}
