package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emilianodellacasa/colloquio/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available respondent profiles",
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")

		paths, err := profile.List(dir)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if len(paths) == 0 {
			fmt.Printf("No profiles found in %s\n", dir)
			return
		}

		for _, path := range paths {
			prof, err := profile.Load(path)
			if err != nil {
				fmt.Printf("  %s (unreadable: %v)\n", path, err)
				continue
			}
			fmt.Printf("  %-12s %s, %s anni, %s\n",
				prof.PatientID, prof.DisplayName(), prof.SafeField("eta"), prof.GenderLabel())
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.Flags().String("dir", "profili", "Directory with respondent profile JSON files")
}
