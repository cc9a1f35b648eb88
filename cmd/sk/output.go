package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/skein/internal/codec"
	"github.com/steveyegge/skein/internal/debug"
)

// output renders v according to the global format flags: JSON, YAML, or
// the given human-readable fallback.
func output(v interface{}, human string) error {
	switch {
	case jsonOutput:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case yamlOutput:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
	default:
		fmt.Print(human)
	}
	return nil
}

// reportMalformed warns about skipped lines on stderr. The read itself
// succeeded; these are lines a human needs to repair by hand.
func reportMalformed(malformed []*codec.MalformedRecordError) {
	if len(malformed) == 0 || debug.IsQuiet() {
		return
	}
	for _, m := range malformed {
		fmt.Fprintf(os.Stderr, "Warning: skipped malformed record at %v\n", m)
	}
}
