package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize (or re-open and replay) the configured region",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		size, err := s.Size()
		if err != nil {
			return err
		}
		remaining, err := s.Remaining()
		if err != nil {
			return err
		}
		fmt.Printf("initialized: size=%d remaining=%d\n", size, remaining)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
