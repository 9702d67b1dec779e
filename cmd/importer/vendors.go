package main

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/history-importer/internal/vendors"
)

func vendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors",
		Short: "List the supported vendors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd, vendors.Names())
		},
	}
}
