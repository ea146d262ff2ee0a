package task

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteRecord persists the record at path atomically: marshal, write to a
// temp file in the target directory, then rename onto the path. A reader
// polling the path sees either the previous complete record or the new
// one, never a partial write. On failure the temp file is removed and the
// previous content is left intact.
func WriteRecord(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Create temp file in same directory (ensures same filesystem for atomic rename)
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Ensure temp file is cleaned up on error
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}

	// Sync to ensure data is written
	if err := tmpFile.Sync(); err != nil {
		return err
	}

	// Close temp file before rename
	if err := tmpFile.Close(); err != nil {
		return err
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	// Success: clear defer cleanup
	tmpFile = nil
	return nil
}
