// Command zipbox parses a ZIP archive and, given a destination
// directory, extracts it.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lemon4ksan/zipbox/arena"
	"github.com/lemon4ksan/zipbox/zip"
)

var logger = log.New(os.Stderr, "", 0)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if len(args) < 2 {
		logger.Printf("[error] (usage): %s <zipfile> [destination]", progName(args))
		return 1
	}
	zipPath := args[1]
	var destDir string
	if len(args) > 2 {
		destDir = args[2]
	}

	data, err := os.ReadFile(zipPath)
	if err != nil {
		logger.Printf("[error] (%s): %v", zipPath, err)
		return 1
	}

	a, err := arena.New(arena.DefaultReserveSize, arena.DefaultCommitSize, "zipbox")
	if err != nil {
		logger.Printf("[error] (%s): %v", zipPath, err)
		return 1
	}
	defer a.Release()

	r, err := zip.NewReader(a, data)
	if err != nil {
		logger.Printf("[error] (%s): %v", zipPath, err)
		return 1
	}

	if destDir == "" {
		var totalSize uint64
		for _, e := range r.Entries() {
			totalSize += uint64(e.UncompressedSize())
		}
		fmt.Printf("%d entries, %d bytes uncompressed\n", len(r.Entries()), totalSize)
		return 0
	}

	anyFailed := false
	err = zip.BulkExtract(r, destDir, func(name string, err error) {
		if err != nil {
			anyFailed = true
			logger.Printf("[error] (%s): %v", name, err)
		}
	})
	if err != nil || anyFailed {
		return 1
	}
	return 0
}

func progName(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "zipbox"
}
