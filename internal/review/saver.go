package review

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSaver receives downloaded export artifacts. It is the engine's stand-in
// for the browser file-save dialog.
type FileSaver interface {
	Save(filename string, data []byte) error
}

// DirSaver writes exports into a local directory
type DirSaver struct {
	Dir string
}

// Save writes the artifact under the saver's directory, creating it on
// first use. The filename comes from the server and is sanitized to its
// base name.
func (d DirSaver) Save(filename string, data []byte) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(d.Dir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
