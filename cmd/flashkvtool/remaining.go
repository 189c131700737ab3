package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var remainingCmd = &cobra.Command{
	Use:   "remaining",
	Short: "Print the active area's free space, in bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		n, err := s.Remaining()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remainingCmd)
}
