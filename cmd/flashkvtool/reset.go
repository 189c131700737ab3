package main

import "github.com/spf13/cobra"

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all logical content in the configured region",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		return s.Reset()
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
