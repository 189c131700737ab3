package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put KEY [FILE|-]",
	Short: "Write a value under KEY, reading it from FILE or stdin",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]

		src := os.Stdin
		if len(args) == 2 && args[1] != "-" {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("flashkvtool: opening %s: %w", args[1], err)
			}
			defer f.Close()
			src = f
		}

		value, err := io.ReadAll(src)
		if err != nil {
			return fmt.Errorf("flashkvtool: reading value: %w", err)
		}

		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		return s.Write([]byte(key), value)
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
