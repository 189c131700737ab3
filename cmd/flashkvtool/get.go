package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Priyanshu23/flashkv"
)

var getCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Read the value stored under KEY and write it to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, dev, err := openStore()
		if err != nil {
			return err
		}
		defer dev.Close()
		defer s.Deinit()

		key := []byte(args[0])

		// Probe for the required size first; Read(key, nil) never copies.
		n, err := s.Read(key, nil)
		if err == flashkv.ErrItemNotFound {
			return fmt.Errorf("flashkvtool: key %q not found", args[0])
		}
		if err != nil {
			return err
		}

		buf := make([]byte, n)
		if _, err := s.Read(key, buf); err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf)
		return err
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
