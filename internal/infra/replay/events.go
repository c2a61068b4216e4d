// Package replay provides a deterministic harness for driving the
// synchronization core from recorded transport payloads and scripted
// scenarios. It exists for development and integration-style tests;
// production wiring plugs real transport and REST implementations into
// the same ports.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// ReadEvents returns the raw transport payloads from a JSONL file, one
// payload per line. Malformed lines are skipped and counted rather
// than failing the whole file; blank lines are ignored.
func ReadEvents(path string) (payloads [][]byte, skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open events file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)

	// Allow up to 1MB for large incident payloads.
	const (
		initialBufSize = 64 * 1024
		maxLineSize    = 1024 * 1024
	)
	scanner.Buffer(make([]byte, initialBufSize), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			skipped++
			continue
		}
		payloads = append(payloads, append([]byte(nil), line...))
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("scan events file: %w", err)
	}
	return payloads, skipped, nil
}
