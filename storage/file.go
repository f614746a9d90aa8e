package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const itemSuffix = ".item"

// File stores one file per key under a directory. Several File values (in
// one process or many) may share a directory; Watch reports changes made
// by the others.
type File struct {
	dir    string
	logger *zap.Logger

	mu     sync.RWMutex
	own    map[string]ownWrite
	closed bool
}

type ownWrite struct {
	value   string
	removed bool
}

// NewFile creates the directory if needed.
func NewFile(dir string, logger *zap.Logger) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create storage dir %s", dir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{dir: dir, logger: logger, own: make(map[string]ownWrite)}, nil
}

// Dir returns the storage directory.
func (f *File) Dir() string {
	return f.dir
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+itemSuffix)
}

func keyFromName(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, itemSuffix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimSuffix(base, itemSuffix))
	if err != nil {
		return "", false
	}
	return key, true
}

func (f *File) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return "", false, ErrClosed
	}
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// SetItem writes through a temp file and rename so readers never see a
// partial value.
func (f *File) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	f.own[key] = ownWrite{value: value}
	return nil
}

func (f *File) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	f.own[key] = ownWrite{removed: true}
	return nil
}

func (f *File) Keys(_ context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return nil, ErrClosed
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if key, ok := keyFromName(entry.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *File) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Watch calls fn with the key of every item changed by someone other than
// this File. Changes that leave an item as this File last wrote it are
// treated as echoes and skipped. fn runs on the watcher goroutine.
func (f *File) Watch(ctx context.Context, fn func(key string)) (func(), error) {
	if fn == nil {
		return func() {}, nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := watcher.Add(f.dir); err != nil {
		_ = watcher.Close()
		return nil, errors.Wrapf(err, "watch %s", f.dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				key, ok := keyFromName(event.Name)
				if !ok || f.isEcho(key) {
					continue
				}
				fn(key)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.logger.Warn("storage watcher error", zap.String("dir", f.dir), zap.Error(err))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (f *File) isEcho(key string) bool {
	f.mu.RLock()
	own, ok := f.own[key]
	f.mu.RUnlock()
	if !ok {
		return false
	}
	data, err := os.ReadFile(f.path(key))
	switch {
	case os.IsNotExist(err):
		return own.removed
	case err != nil:
		return false
	default:
		return !own.removed && string(data) == own.value
	}
}
