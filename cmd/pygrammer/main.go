// Package main implements the pygrammer CLI (SPEC_FULL.md §A.4): it drives
// the gen pipeline over a grammar description file and writes the emitted
// stand-alone parser's Go source to disk. Grounded on
// _examples/vovakirdan-surge/cmd/surge/main.go's single-root-command cobra
// wiring, and on _examples/ava12-llx/cmd/llxgen/llxgen.go's exit-code
// convention (0 success, 3 fatal error).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/overdev/pygrammer/diagnostics"
)

var rootCmd = &cobra.Command{
	Use:   "pygrammer <grammar_path>",
	Short: "Compile a grammar description into a stand-alone recursive-descent parser",
	Long: "pygrammer reads an EBNF-like grammar description and emits a " +
		"stand-alone Go recursive-descent parser that produces JSON ASTs.",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func main() {
	rootCmd.Flags().String("out", "", "output Go source path (defaults to stdout)")
	rootCmd.Flags().String("verbose", "warning", "diagnostics threshold: error|warning|success|debug1|info|debug2|debug3|all")
	rootCmd.Flags().String("package", "main", "package name of the emitted parser")
	rootCmd.Flags().Bool("emit-model-json", false, "dump the resolved grammar model as JSON instead of generating Go source")
	rootCmd.Flags().Bool("dry-run", false, "run the pipeline through resolution and report diagnostics, without generating output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(3)
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	grammarPath := args[0]

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	verboseArg, err := cmd.Flags().GetString("verbose")
	if err != nil {
		return err
	}
	level, ok := diagnostics.ParseLevel(verboseArg)
	if !ok {
		return fmt.Errorf("unknown --verbose level %q", verboseArg)
	}
	pkgName, err := cmd.Flags().GetString("package")
	if err != nil {
		return err
	}
	emitModelJSON, err := cmd.Flags().GetBool("emit-model-json")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	text, err := os.ReadFile(grammarPath)
	if err != nil {
		return err
	}

	if emitModelJSON {
		return runEmitModelJSON(grammarPath, text, level, outPath)
	}
	if dryRun {
		return runDryRun(grammarPath, text, level)
	}
	return runFullGenerate(grammarPath, text, level, pkgName, outPath)
}
