package kv

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const fileExt = ".json"

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// File keeps one file per key under a directory. Writes go to a temp file
// that is renamed over the target so readers never see a partial value.
type File struct {
	dir string

	mu        sync.Mutex
	lastWrite map[string][sha256.Size]byte
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir, lastWrite: make(map[string][sha256.Size]byte)}, nil
}

// Dir returns the directory holding the key files.
func (f *File) Dir() string {
	return f.dir
}

func (f *File) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("kv: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return b, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}

	f.mu.Lock()
	f.lastWrite[key] = sha256.Sum256(value)
	f.mu.Unlock()

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (f *File) Ping(_ context.Context) error {
	st, err := os.Stat(f.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("kv: %s is not a directory", f.dir)
	}
	return nil
}

// Watch calls fn with the key of every file changed by someone other than
// this File (another process, an editor, a restore). It blocks until ctx is
// done. Only setup failures are returned; errors reported while watching go
// to onErr (which may be nil) and watching continues.
func (f *File) Watch(ctx context.Context, fn func(key string), onErr func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(f.dir); err != nil {
		return fmt.Errorf("watch %s: %w", f.dir, err)
	}

	f.watchLoop(ctx, w.Events, w.Errors, fn, onErr)
	return nil
}

func (f *File) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, fn func(key string), onErr func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				return
			}
			if onErr != nil {
				onErr(fmt.Errorf("watch %s: %w", f.dir, err))
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			key, ok := f.keyOf(ev.Name)
			if !ok || f.selfWritten(key) {
				continue
			}
			fn(key)
		}
	}
}

func (f *File) keyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	key := strings.TrimSuffix(base, fileExt)
	return key, validKey.MatchString(key)
}

func (f *File) selfWritten(key string) bool {
	p, err := f.path(key)
	if err != nil {
		return false
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return false
	}
	sum := sha256.Sum256(b)

	f.mu.Lock()
	defer f.mu.Unlock()
	last, ok := f.lastWrite[key]
	return ok && last == sum
}
