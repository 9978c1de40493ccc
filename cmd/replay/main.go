// Command replay reads a run spec as JSON and prints the resulting tape.
//
//	replay -spec run.json [-wire]
//	cat run.json | replay
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/urbanhobbit/CIOGame04/replay"
)

func main() {
	specPath := flag.String("spec", "", "path to a run spec JSON file (default stdin)")
	wire := flag.Bool("wire", false, "print only the binary envelopes")
	flag.Parse()

	if err := run(*specPath, *wire, os.Stdin, os.Stdout); err != nil {
		var replayErr *replay.ReplayError
		if errors.As(err, &replayErr) {
			_ = json.NewEncoder(os.Stderr).Encode(replayErr)
			os.Exit(2)
		}
		exitf("replay: %v", err)
	}
}

func run(specPath string, wire bool, stdin io.Reader, stdout io.Writer) error {
	var (
		data []byte
		err  error
	)
	if specPath == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(specPath)
	}
	if err != nil {
		return fmt.Errorf("read spec: %w", err)
	}

	var spec replay.RunSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parse spec: %w", err)
	}
	tape, err := replay.GenerateTape(spec)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if wire {
		return enc.Encode(replay.ToWireTape(tape))
	}
	return enc.Encode(tape)
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
