package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/osvald0/linkedin-scraper/internal/models"
)

// JSONFile keeps all records in one human-readable JSON array. The file is
// guarded by an advisory lock so two runs can't interleave writes; the
// whole array is rewritten on every save, which is fine at this scale.
type JSONFile struct {
	path  string
	fl    *flock.Flock
	recs  []models.Record
	byURL map[string]int // url -> index into recs
}

// OpenJSONFile loads (or starts) the store at path and takes its lock.
func OpenJSONFile(path string) (*JSONFile, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("make store directory %s: %w", dir, err)
		}
	}

	fl := flock.New(path + ".lock")
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("store %s is locked by another run", path)
	}

	j := &JSONFile{path: path, fl: fl, byURL: map[string]int{}}
	if err := j.load(); err != nil {
		_ = fl.Unlock()
		return nil, err
	}
	return j, nil
}

func (j *JSONFile) load() error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", j.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &j.recs); err != nil {
		return fmt.Errorf("parse %s: %w", j.path, err)
	}
	for i, r := range j.recs {
		j.byURL[r.URL] = i
	}
	return nil
}

// Save implements Store.
func (j *JSONFile) Save(_ context.Context, rec models.Record) (bool, error) {
	if i, ok := j.byURL[rec.URL]; ok {
		if j.recs[i].Success || !rec.Success {
			return false, nil
		}
		j.recs[i] = rec // a successful scrape replaces an earlier failure
	} else {
		j.byURL[rec.URL] = len(j.recs)
		j.recs = append(j.recs, rec)
	}
	return true, j.flush()
}

// KnownURLs implements Store.
func (j *JSONFile) KnownURLs(_ context.Context) ([]string, error) {
	urls := make([]string, 0, len(j.recs))
	for _, r := range j.recs {
		if r.Success {
			urls = append(urls, r.URL)
		}
	}
	return urls, nil
}

// Count implements Store.
func (j *JSONFile) Count(_ context.Context) (int, error) {
	n := 0
	for _, r := range j.recs {
		if r.Success {
			n++
		}
	}
	return n, nil
}

// Close implements Store.
func (j *JSONFile) Close() error {
	if err := j.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", j.path, err)
	}
	return nil
}

func (j *JSONFile) flush() error {
	data, err := json.MarshalIndent(j.recs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o644); err != nil { //nolint:gosec // report file, not a secret
		return fmt.Errorf("write %s: %w", j.path, err)
	}
	return nil
}
