package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Print the active area's consumed size, in bytes",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		n, err := s.Size()
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sizeCmd)
}
