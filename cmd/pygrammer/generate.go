package main

import (
	"os"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/gen"
)

func runFullGenerate(grammarPath string, text []byte, level diagnostics.Level, pkgName, outPath string) error {
	res, err := gen.Run(grammarPath, text, gen.Options{PackageName: pkgName, Verbosity: level}, os.Stderr)
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err := os.Stdout.WriteString(res.Source)
		return err
	}
	return os.WriteFile(outPath, []byte(res.Source), 0o644)
}
