// Package vector manages the local store of test vector files and their
// retrieval from the upstream repository.
//
// Vectors are JSON files named <opcode>.json inside a single directory. A
// vector is "present" when its file exists; there is no index or manifest,
// so deleting a file is enough to force a re-download and dropping a file
// in by hand is enough to register it.
package vector

import (
	"os"
	"path/filepath"
)

// Store locates vector files on disk.
type Store struct {
	// Dir is the directory holding one <opcode>.json per case.
	Dir string
}

// Path returns the file path for the given opcode's vector.
func (s Store) Path(opcode string) string {
	return filepath.Join(s.Dir, opcode+".json")
}

// Present reports whether the vector file for opcode exists. Downloads are
// written to a temp name and renamed into place, so a file that exists is
// complete.
func (s Store) Present(opcode string) bool {
	info, err := os.Stat(s.Path(opcode))
	return err == nil && info.Mode().IsRegular()
}

// EnsureDir creates the store directory if needed.
func (s Store) EnsureDir() error {
	return os.MkdirAll(s.Dir, 0o755)
}
