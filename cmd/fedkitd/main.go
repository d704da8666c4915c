package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/fedkit/fedkit/fedkitd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fedkitd",
		Short: "Fedkit Daemon",
		Long:  `Fedkit Daemon runs the federated training coordinator.`,
	}

	coordinatorCmd := fedkitd.NewCoordinatorCmd()

	rootCmd.AddCommand(coordinatorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
