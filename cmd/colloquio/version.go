package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	colloquio "github.com/emilianodellacasa/colloquio"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of colloquio",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("colloquio version %s\n", strings.TrimSpace(colloquio.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
