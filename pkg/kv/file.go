package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultFilePath = "~/.config/storefront/storage.toml"

// CorruptSuffix is appended to a document that could not be decoded
const CorruptSuffix = ".corrupt"

// File is a Store persisted as a single TOML document. Every Set rewrites the
// file before returning.
type File struct {
	mu          sync.RWMutex
	path        string
	data        map[string]string
	quarantined string
}

// OpenFile loads the document at path. A missing file is an empty store. A
// document that fails to decode is renamed with CorruptSuffix and the store
// starts empty; Quarantined reports where it went.
func OpenFile(path string) (*File, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	f := &File{path: resolved, data: make(map[string]string)}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, nil
		}
		return nil, fmt.Errorf("read storage: %w", err)
	}

	if err := toml.Unmarshal(bytes, &f.data); err != nil {
		aside := resolved + CorruptSuffix
		if rerr := os.Rename(resolved, aside); rerr != nil {
			return nil, fmt.Errorf("unmarshal storage: %w (move aside: %v)", err, rerr)
		}
		f.data = make(map[string]string)
		f.quarantined = aside
	}

	return f, nil
}

func (f *File) Path() string {
	return f.path
}

// Quarantined is the path the unreadable document was moved to, or "" when
// the file loaded cleanly.
func (f *File) Quarantined() string {
	return f.quarantined
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, existed := f.data[key]
	f.data[key] = value

	if err := f.flush(); err != nil {
		if existed {
			f.data[key] = prev
		} else {
			delete(f.data, key)
		}
		return err
	}
	return nil
}

// flush must be called with the lock held
func (f *File) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	bytes, err := toml.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}

	// write beside the target and rename over it so readers never see a torn file
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(bytes); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write storage: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace storage: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = DefaultFilePath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
