package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pawnlord/wyrmgo/internal/log"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wyrmgo",
	Short: "Decode, render, and parse WebAssembly modules",
	Long: `wyrmgo decodes a Wasm binary into its module structure, renders that
structure back out as WAT, and can run the structure's raw instruction
streams through a generalized Earley recognizer against a grammar whose
terminals are Wasm opcodes and byte classes.

It does not execute WebAssembly and does not reassemble WAT into a
binary module.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			l, err := zap.NewDevelopment()
			if err == nil {
				log.SetLogger(l)
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
