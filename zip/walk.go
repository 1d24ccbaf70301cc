package zip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lemon4ksan/zipbox"
)

// ErrAnyEntryFailed is returned by BulkExtract when at least one
// entry failed; individual failures are reported through onResult as
// they happen, this is only the aggregate signal.
var ErrAnyEntryFailed = errors.New("zip: one or more entries failed to extract")

// BulkExtract extracts every entry of r into destDir, creating
// intermediate directories as needed. Entries are visited depth
// ascending, directories before files at equal depth, then
// lexicographically by name — this ordering is a directory-creation
// and reporting concern of this function alone; extraction of any
// single entry remains strictly sequential and this loop does not
// parallelize across entries. onResult, if non-nil, is called once
// per entry with its outcome (nil error on success). BulkExtract
// continues past a failed entry rather than aborting; its own return
// value only reports whether any entry failed.
func BulkExtract(r *Reader, destDir string, onResult func(name string, err error)) error {
	ordered := sortedForExtraction(r.entries)
	anyFailed := false

	for _, e := range ordered {
		err := extractOne(r, e, destDir)
		if err != nil {
			anyFailed = true
		}
		if onResult != nil {
			onResult(e.Name(), err)
		}
	}

	if anyFailed {
		return ErrAnyEntryFailed
	}
	return nil
}

func sortedForExtraction(entries []*Entry) []*Entry {
	ordered := make([]*Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if da, db := depthOf(a.Name()), depthOf(b.Name()); da != db {
			return da < db
		}
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		return a.Name() < b.Name()
	})
	return ordered
}

func depthOf(name string) int {
	trimmed := strings.TrimSuffix(name, "/")
	if trimmed == "" {
		return 0
	}
	return strings.Count(trimmed, "/") + 1
}

// validatePath rejects entry names that could escape destDir: an
// absolute path, or any ".." path segment (Zip Slip).
func validatePath(name string) error {
	if filepath.IsAbs(name) {
		return zipbox.ErrInsecurePath
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return zipbox.ErrInsecurePath
		}
	}
	return nil
}

func extractOne(r *Reader, e *Entry, destDir string) error {
	if err := validatePath(e.Name()); err != nil {
		return zipbox.Wrap(zipbox.InvalidHeader, e.Name(), err)
	}
	target := filepath.Join(destDir, filepath.FromSlash(e.Name()))

	if e.IsDir() {
		if err := os.MkdirAll(target, 0o777); err != nil {
			return fmt.Errorf("zip: create directory %s: %w", target, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o777); err != nil {
		return fmt.Errorf("zip: create directory %s: %w", filepath.Dir(target), err)
	}

	end := r.a.BeginScratch()
	defer end()

	data, err := r.Extract(e)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", target, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("zip: write %s: %w", target, err)
	}
	return nil
}
