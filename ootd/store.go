package ootd

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

const storeFileName = "outfit_of_the_day.json"

// Store persists at most one entry, today's. Writing replaces whatever was
// there before.
type Store interface {
	Read() (*Entry, error)
	Write(entry Entry) error
}

// FileStore keeps the entry as a single JSON file under Dir. A missing or
// malformed file reads as no entry at all.
type FileStore struct {
	Dir string
}

func (s *FileStore) path() string {
	return filepath.Join(s.Dir, storeFileName)
}

func (s *FileStore) Read() (*Entry, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Printf("Discarding malformed outfit cache file: %v", err)
		return nil, nil
	}
	return &entry, nil
}

func (s *FileStore) Write(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0o644)
}
