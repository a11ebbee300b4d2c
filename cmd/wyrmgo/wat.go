package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pawnlord/wyrmgo/internal/wat"
)

var watCmd = &cobra.Command{
	Use:   "wat <wasm-file>",
	Short: "Render a decoded Wasm module as WAT",
	Args:  cobra.ExactArgs(1),
	RunE:  runWat,
}

func init() {
	rootCmd.AddCommand(watCmd)
}

func runWat(cmd *cobra.Command, args []string) error {
	m, err := loadModule(args[0])
	if err != nil {
		return err
	}
	fmt.Println(wat.Emit(m))
	return nil
}
