// Command focusflow is a terminal client of the FocusFlow API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

const defaultAPIURL = "http://localhost:8080"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "focusflow",
		Short:         "FocusFlow - a personal Kanban board with a focus timer",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("api", apiURLFromEnv(), "FocusFlow API base URL")

	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(passwordCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(focusCmd())
	rootCmd.AddCommand(askCmd())

	return rootCmd
}

func apiURLFromEnv() string {
	if url := os.Getenv("FOCUSFLOW_API_URL"); url != "" {
		return url
	}
	return defaultAPIURL
}
