package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pawnlord/wyrmgo/internal/earley"
	"github.com/pawnlord/wyrmgo/internal/earley/wasmgrammar"
	"github.com/pawnlord/wyrmgo/internal/instruction"
	"github.com/pawnlord/wyrmgo/internal/module"
)

var parseCmd = &cobra.Command{
	Use:   "parse <wasm-file>",
	Short: "Run each function body's raw bytes through the Earley opcode grammar",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	table, err := instruction.Default(instruction.Config{})
	if err != nil {
		return fmt.Errorf("building instruction table: %w", err)
	}
	m, err := module.Decode(data, table)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	grammar := wasmgrammar.Build(table)
	for i, code := range m.Code {
		res, ok := earley.Parse(grammar, wasmgrammar.ByteSymbols(code.Raw))
		if !ok {
			red.Printf("func %d: rejected (%d bytes)\n", i, len(code.Raw))
			continue
		}
		green.Printf("func %d: accepted (%d bytes)\n", i, len(code.Raw))
		if forest, ok := res.SPPF(); ok {
			if item, ambiguous := forest.Ambiguity(); ambiguous {
				yellow.Printf("  ambiguous at %v..%v\n", item.Origin(), item.End())
			}
		}
	}
	return nil
}
