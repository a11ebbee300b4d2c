package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pawnlord/wyrmgo/internal/instruction"
	"github.com/pawnlord/wyrmgo/internal/module"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <wasm-file>",
	Short: "Decode a Wasm binary and summarize its module structure",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

func loadModule(path string) (*module.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	table, err := instruction.Default(instruction.Config{})
	if err != nil {
		return nil, fmt.Errorf("building instruction table: %w", err)
	}
	return module.Decode(data, table)
}

func runDecode(cmd *cobra.Command, args []string) error {
	m, err := loadModule(args[0])
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Println("types:")
	for i, t := range m.Types {
		fmt.Printf("  [%d] %v -> %v\n", i, t.Params, t.Results)
	}
	bold.Println("imports:")
	for _, imp := range m.Imports {
		fmt.Printf("  %s.%s\n", imp.Module, imp.Name)
	}
	bold.Println("functions:")
	for i := range m.Funcs {
		fmt.Printf("  [%d] type=%d\n", i, m.Funcs[i].TypeIndex)
	}
	bold.Println("exports:")
	for _, e := range m.Exports {
		fmt.Printf("  %s\n", e.Name)
	}
	if m.Start != nil {
		bold.Println("start:")
		fmt.Printf("  func %d\n", *m.Start)
	}
	return nil
}
