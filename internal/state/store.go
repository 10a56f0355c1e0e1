package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/marcozac/go-jsonc"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

const (
	defaultLockTimeout = 250 * time.Millisecond
	lockRetryDelay     = 10 * time.Millisecond
)

// ErrNoState is reported when nothing has been saved yet.
var ErrNoState = errors.New("no stored state")

// Options tunes a Store.
type Options struct {
	// NoLock disables the advisory lock around load-modify-save.
	NoLock bool
	// LockTimeout bounds how long Lock waits. Zero means 250ms.
	LockTimeout time.Duration
}

// LoadResult is the outcome of Load. State is always usable; Defaulted and
// Err explain why it may not be what was on disk.
type LoadResult struct {
	State     SessionState
	Defaulted bool
	Err       error
}

// SaveResult is the outcome of Save. A non-nil Err means the write was dropped.
type SaveResult struct {
	Err error
}

// OK reports whether the record reached storage.
func (r SaveResult) OK() bool {
	return r.Err == nil
}

// Store persists a single SessionState as a pretty-printed JSON file.
type Store struct {
	path string
	opts Options
}

// NewStore returns a store backed by the file at path. Nothing is touched on
// disk until Load, Save or Lock is called.
func NewStore(path string, opts *Options) *Store {
	s := &Store{path: path}
	if opts != nil {
		s.opts = *opts
	}
	if s.opts.LockTimeout <= 0 {
		s.opts.LockTimeout = defaultLockTimeout
	}
	return s
}

// Path returns the state file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) dir() string {
	return filepath.Dir(s.path)
}

func (s *Store) key() string {
	return filepath.Base(s.path)
}

func (s *Store) openBucket(create bool) (*blob.Bucket, error) {
	bucket, err := fileblob.OpenBucket(s.dir(), &fileblob.Options{
		CreateDir: create,
		NoTempDir: true,
		Metadata:  fileblob.MetadataDontWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("open state dir %s: %w", s.dir(), err)
	}
	return bucket, nil
}

// Load reads the stored record. It never fails: an absent, unreadable or
// malformed record yields Default with the cause in Err.
func (s *Store) Load(ctx context.Context) LoadResult {
	data, err := s.read(ctx)
	if err != nil {
		return LoadResult{State: Default(), Defaulted: true, Err: err}
	}

	var st SessionState
	if err := jsonc.Unmarshal(data, &st); err != nil {
		return LoadResult{
			State:     Default(),
			Defaulted: true,
			Err:       fmt.Errorf("decode %s: %w", s.path, err),
		}
	}
	return LoadResult{State: st}
}

func (s *Store) read(ctx context.Context) ([]byte, error) {
	if _, err := os.Stat(s.dir()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoState, s.path)
		}
		return nil, fmt.Errorf("stat state dir: %w", err)
	}

	bucket, err := s.openBucket(false)
	if err != nil {
		return nil, err
	}
	defer bucket.Close()

	data, err := bucket.ReadAll(ctx, s.key())
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNoState, s.path)
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save overwrites the stored record with st, creating the state directory if
// needed. Failures are reported in the result, never as a panic or exit.
func (s *Store) Save(ctx context.Context, st SessionState) SaveResult {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return SaveResult{Err: fmt.Errorf("encode state: %w", err)}
	}
	data = append(data, '\n')

	bucket, err := s.openBucket(true)
	if err != nil {
		return SaveResult{Err: err}
	}
	defer bucket.Close()

	if err := bucket.WriteAll(ctx, s.key(), data, nil); err != nil {
		return SaveResult{Err: fmt.Errorf("write %s: %w", s.path, err)}
	}
	return SaveResult{}
}

// Reset replaces the stored record with Default.
func (s *Store) Reset(ctx context.Context) SaveResult {
	return s.Save(ctx, Default())
}

// Lock takes the advisory lock guarding a load-modify-save sequence, waiting
// at most Options.LockTimeout. The returned release func is never nil, so
// callers may proceed unlocked when err is non-nil.
func (s *Store) Lock(ctx context.Context) (release func(), err error) {
	release = func() {}
	if s.opts.NoLock {
		return release, nil
	}
	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return release, fmt.Errorf("create state dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.LockTimeout)
	defer cancel()

	fl := flock.New(s.path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return release, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return release, fmt.Errorf("lock %s: not acquired", fl.Path())
	}
	return func() { _ = fl.Unlock() }, nil
}
