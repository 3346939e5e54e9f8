package pipeline

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// makeFIFO creates a named pipe next to the input file, so the filter
// process can open it by path. The caller removes it when the run is
// over.
func makeFIFO(inputPath string) (string, error) {
	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPipeCreate, err)
	}
	name := fmt.Sprintf("%s.tmp_%s.json", filepath.Base(inputPath), hex.EncodeToString(suffix[:]))
	fifo := filepath.Join(filepath.Dir(inputPath), name)
	if err := unix.Mkfifo(fifo, 0o600); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrPipeCreate, fifo, err)
	}
	return fifo, nil
}
