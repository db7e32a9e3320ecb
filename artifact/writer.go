package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/giygas/supply-status/logging"
)

// WriteAtomic replaces the file at path with data. The bytes go to a
// temporary file in the same directory which is then renamed over path, so
// readers see either the old artifact or the new one, never a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
				logging.Warn("Failed to remove temporary artifact", "path", tmpPath, "error", err)
			}
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}

	// CreateTemp uses 0600
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDestinationUnwritable, path, err)
	}
	committed = true

	logging.Debug("Artifact written", "path", path, "bytes", len(data))
	return nil
}
