package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/slotguard/solidity"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "slotguard",
		Short:         "Storage layout diagnostics for upgradeable Solidity contracts",
		Long:          "slotguard scans Solidity sources for ERC-7201 namespaced storage hazards:\nmissing namespaces, mismatched namespace ids and stale slot constants.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newVersionsCommand())
	return root
}

func newVersionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the supported solc releases",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, v := range solidity.SupportedVersions {
				fmt.Fprintln(cmd.OutOrStdout(), v.String())
			}
		},
	}
}
