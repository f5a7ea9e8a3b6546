package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hireiq",
	Short: "HireIQ recruitment platform backend",
	Long:  `The HireIQ backend providing account registration, session management with refresh token rotation, and company administration over HTTP.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
