package main

import "github.com/spf13/cobra"

var deleteCmd = &cobra.Command{
	Use:   "delete KEY",
	Short: "Delete the value stored under KEY",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		return s.Delete([]byte(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
