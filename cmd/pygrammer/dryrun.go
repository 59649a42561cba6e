package main

import (
	"fmt"
	"os"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/gparse"
	"github.com/overdev/pygrammer/resolve"
	"github.com/overdev/pygrammer/source"
)

// runDryRun runs the pipeline through resolution only (SPEC_FULL.md §C.4
// supplement): useful for validating a grammar in an editor/CI context
// without producing an output file.
func runDryRun(grammarPath string, text []byte, level diagnostics.Level) error {
	sink := diagnostics.New(os.Stderr, level)

	g, err := gparse.Parse(source.New(grammarPath, text))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("grammar has errors")
	}

	if _, err := resolve.Run(g, sink); err != nil {
		return fmt.Errorf("grammar has errors")
	}

	fmt.Fprintln(os.Stdout, "grammar is valid")
	return nil
}
