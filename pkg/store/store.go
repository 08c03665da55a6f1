// Package store persists the ranked candidate list.
package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/gofrs/flock"

	"github.com/codeGROOVE-dev/shadowrecon/pkg/candidate"
)

// ErrPersist is wrapped by every error that prevents the output file from
// being written.
var ErrPersist = errors.New("persist failed")

const (
	dirMode  fs.FileMode = 0o750
	fileMode fs.FileMode = 0o644
	indent               = "    "
)

// Encode renders candidates as the refined-targets JSON document.
// Identical input always yields identical bytes.
func Encode(cands []candidate.Candidate) ([]byte, error) {
	if cands == nil {
		cands = []candidate.Candidate{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(cands); err != nil {
		return nil, fmt.Errorf("encode candidates: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cands to path. Parent directories are created as needed, and
// the file is replaced atomically so readers never observe a partial write.
// Concurrent callers writing the same path are serialized by a lock file
// kept in the temp directory, so the output directory only ever holds path.
func Save(ctx context.Context, cands []candidate.Candidate, path string) error {
	data, err := Encode(cands)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("%w: create %s: %w", ErrPersist, dir, err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("%w: lock %s: %w", ErrPersist, path, err)
	}
	defer lock.Unlock() //nolint:errcheck // lock file is released on process exit anyway

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", ErrPersist, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("%w: write: %w", ErrPersist, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		return fmt.Errorf("%w: sync: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrPersist, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		return fmt.Errorf("%w: chmod: %w", ErrPersist, err)
	}

	err = retry.Do(
		func() error { return os.Rename(tmpName, path) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return fmt.Errorf("%w: rename into %s: %w", ErrPersist, path, err)
	}
	committed = true
	return nil
}

// Load reads a refined-targets file written by Save.
// Save indents evidence along with the rest of the document, so Load returns
// each evidence blob compacted: a Save/Load round trip of compact evidence
// reproduces it byte for byte.
func Load(path string) ([]candidate.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cands []candidate.Candidate
	if err := json.Unmarshal(data, &cands); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	var buf bytes.Buffer
	for i := range cands {
		if len(cands[i].Evidence) == 0 {
			continue
		}
		buf.Reset()
		if err := json.Compact(&buf, cands[i].Evidence); err != nil {
			return nil, fmt.Errorf("decode %s: evidence of %q: %w", path, cands[i].URL, err)
		}
		cands[i].Evidence = bytes.Clone(buf.Bytes())
	}
	return cands, nil
}

// lockPath names the temp-dir lock file guarding path. Every spelling of the
// same absolute path maps to the same lock.
func lockPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	sum := sha256.Sum256([]byte(path))
	return filepath.Join(os.TempDir(), "shadowrecon-"+hex.EncodeToString(sum[:8])+".lock")
}

// isTransient reports whether a rename failure may succeed on retry.
// Missing or forbidden targets are permanent.
func isTransient(err error) bool {
	return !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission)
}
