package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/fedkit/fedkit/fedkitd"
	"github.com/fedkit/fedkit/pkg/sdk"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fedkit-cli",
		Short: "Fedkit CLI",
		Long:  `Fedkit CLI is a command line interface for inspecting federated training runs.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				CoordinatorURL:  fedkitd.DefCoordinatorURL,
				TLSVerification: fedkitd.DefTLSVerification,
			}
			s := sdk.NewSDK(sdkConf)
			fedkitd.SetSDK(s)
		},
	}

	runsCmd := fedkitd.NewRunsCmd()

	rootCmd.AddCommand(runsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
