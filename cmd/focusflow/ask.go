package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant about your board",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, c, err := openBoard(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			answer, err := c.GenerateAI(cmd.Context(), strings.Join(args, " "), ctrl.Summary())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}
