package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/overdev/pygrammer/diagnostics"
	"github.com/overdev/pygrammer/gparse"
	"github.com/overdev/pygrammer/resolve"
	"github.com/overdev/pygrammer/source"
)

// runEmitModelJSON dumps the fully resolved grammar model as JSON
// (SPEC_FULL.md §C.4 supplement, grounded on the teacher's cmd/llxgen
// makeJson debug dump): useful for inspecting @expand results, FIRST sets,
// and resolved item kinds without reading generated Go source.
func runEmitModelJSON(grammarPath string, text []byte, level diagnostics.Level, outPath string) error {
	sink := diagnostics.New(os.Stderr, level)

	g, err := gparse.Parse(source.New(grammarPath, text))
	if err != nil {
		return err
	}

	fs, err := resolve.Run(g, sink)
	if err != nil {
		return fmt.Errorf("grammar has errors")
	}

	dump := struct {
		Grammar   interface{} `json:"grammar"`
		FirstSets interface{} `json:"first_sets"`
	}{
		Grammar:   g,
		FirstSets: firstSetsJSON(fs),
	}

	js, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err := os.Stdout.Write(append(js, '\n'))
		return err
	}
	return os.WriteFile(outPath, js, 0o644)
}

func firstSetsJSON(fs *resolve.FirstSets) map[string]interface{} {
	out := make(map[string]interface{}, len(fs.Rules))
	for name, set := range fs.Rules {
		var tokens []string
		for _, tname := range fs.TokenNames {
			if set.Tokens.Contains(fs.TokenIndex[tname]) {
				tokens = append(tokens, tname)
			}
		}
		var groups []string
		for g := range set.Groups {
			groups = append(groups, g)
		}
		var literals []string
		for l := range set.Literals {
			literals = append(literals, l)
		}
		out[name] = map[string]interface{}{
			"tokens":   tokens,
			"groups":   groups,
			"literals": literals,
			"nullable": set.Nullable,
		}
	}
	return out
}
