package main

import (
	"os"

	"github.com/alimgiray/crewledger/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.WithError(err).Error("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crewledger",
		Short:         "Project, worker and payment ledger API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	return root
}
