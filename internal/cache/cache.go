// Package cache keeps the .yega-lock.json lockfile that lets the task runner
// skip generation whose inputs have not changed.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// FileName is the lockfile name inside the backend directory.
const FileName = ".yega-lock.json"

// LockFile maps each generated output path to the entry that produced it.
type LockFile struct {
	Outputs map[string]LockEntry `json:"outputs"`
}

// LockEntry records hashes and metadata for a single output.
type LockEntry struct {
	InputHash  string `json:"inputHash"`
	OutputHash string `json:"outputHash"`
	Timestamp  string `json:"timestamp"`
	Model      string `json:"model"`
	RunID      string `json:"runId"`
}

// NewRunID identifies one runner invocation in the lockfile.
func NewRunID() string { return uuid.NewString() }

// HashInput computes a SHA-256 over the parts that determine an output.
// Parts are length-prefixed so that moving text between them changes the
// hash.
func HashInput(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strconv.Itoa(len(p))))
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashOutput computes a SHA-256 hash of generated content.
func HashOutput(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// Load reads the lockfile from dir. A missing file yields an empty one.
func Load(afs afero.Fs, dir string) (*LockFile, error) {
	data, err := afero.ReadFile(afs, filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &LockFile{Outputs: make(map[string]LockEntry)}, nil
		}
		return nil, fmt.Errorf("reading lockfile: %w", err)
	}
	var lf LockFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}
	if lf.Outputs == nil {
		lf.Outputs = make(map[string]LockEntry)
	}
	return &lf, nil
}

// Save writes the lockfile to dir.
func (lf *LockFile) Save(afs afero.Fs, dir string) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}
	if err := afero.WriteFile(afs, filepath.Join(dir, FileName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing lockfile: %w", err)
	}
	return nil
}

// Record stores the entry for output.
func (lf *LockFile) Record(output, inputHash, content, model, runID string, now time.Time) {
	lf.Outputs[output] = LockEntry{
		InputHash:  inputHash,
		OutputHash: HashOutput(content),
		Timestamp:  now.UTC().Format(time.RFC3339),
		Model:      model,
		RunID:      runID,
	}
}

// IsUpToDate reports whether output was generated from inputHash and still
// exists on disk.
func (lf *LockFile) IsUpToDate(afs afero.Fs, output, inputHash string) bool {
	entry, ok := lf.Outputs[output]
	if !ok || entry.InputHash != inputHash {
		return false
	}
	exists, err := afero.Exists(afs, output)
	return err == nil && exists
}
