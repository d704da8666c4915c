package fedkitd

import (
	"github.com/spf13/cobra"

	"github.com/fedkit/fedkit/pkg/sdk"
)

var (
	DefTLSVerification = false
	DefCoordinatorURL  = "http://localhost:7070"
)

var fsdk sdk.SDK

func SetSDK(s sdk.SDK) {
	fsdk = s
}

var runsCmd = []cobra.Command{
	{
		Use:   "history",
		Short: "View run history",
		Long:  `View the evaluation history of the current or last training run.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			h, err := fsdk.GetHistory()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, h)
		},
	},
	{
		Use:   "status",
		Short: "View run status",
		Long:  `View the progress of the current or last training run.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			s, err := fsdk.GetStatus()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, s)
		},
	},
	{
		Use:   "health",
		Short: "Check coordinator health",
		Long:  `Check whether the coordinator is up.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 0 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			h, err := fsdk.Health()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, h)
		},
	},
}

func NewRunsCmd() *cobra.Command {
	cmd := cobra.Command{
		Use:   "runs [history|status|health]",
		Short: "Runs inspection",
		Long:  `Inspect training runs on a running coordinator.`,
	}

	for i := range runsCmd {
		cmd.AddCommand(&runsCmd[i])
	}

	cmd.PersistentFlags().StringVarP(
		&DefCoordinatorURL,
		"coordinator-url",
		"u",
		DefCoordinatorURL,
		"Coordinator URL",
	)

	cmd.PersistentFlags().BoolVarP(
		&DefTLSVerification,
		"tls-verification",
		"v",
		DefTLSVerification,
		"TLS Verification",
	)

	return &cmd
}
