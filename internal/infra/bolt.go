package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

// OpenBolt opens the Bolt database file at path, creating the file and its
// directory when missing. The open waits up to a second for the file lock so
// a restarting process does not race its predecessor.
func OpenBolt(path string) (*bolt.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create bolt directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}
	return db, nil
}
