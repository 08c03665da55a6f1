package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/handle"
	"github.com/codeGROOVE-dev/shadowrecon/pkg/store"
)

func newLocateCommand() *cobra.Command {
	var platformName string

	cmd := &cobra.Command{
		Use:   "locate <refined_targets.json>",
		Short: "Print the subject's username on a platform from a refined candidate list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cands, err := store.Load(args[0])
			if err != nil {
				return fmt.Errorf("load candidates: %w", err)
			}
			name, err := handle.Locate(cands, platformName)
			if err != nil {
				return err
			}
			if name == "" {
				return fmt.Errorf("no %s username found in %s", platformName, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformName, "platform", "p", "instagram", "Platform to look up")
	return cmd
}
