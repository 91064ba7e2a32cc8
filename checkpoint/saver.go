package checkpoint

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/adago/resource"
)

// SaverOptions holds the tunables of a Saver.
type SaverOptions struct {
	// Compression applied to snapshot payloads.
	Compression Compression

	// Controller bounds concurrent saves and throttles their IO.
	// Nil means unbounded.
	Controller *resource.Controller
}

// Saver encodes snapshots and moves them through a Store, applying
// resource limits so checkpointing cannot starve the training loop.
type Saver struct {
	store Store
	opts  SaverOptions
}

// NewSaver creates a Saver over the given store.
func NewSaver(store Store, optFns ...func(*SaverOptions)) (*Saver, error) {
	if store == nil {
		return nil, errors.New("nil store")
	}

	opts := SaverOptions{
		Compression: CompressionZSTD,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Saver{store: store, opts: opts}, nil
}

// Save encodes and writes a snapshot, returning the encoded size.
// It blocks while acquiring a background worker slot and while the IO
// budget admits the blob.
func (s *Saver) Save(ctx context.Context, name string, snap Snapshot) (int, error) {
	if err := s.opts.Controller.AcquireWorker(ctx); err != nil {
		return 0, err
	}
	defer s.opts.Controller.ReleaseWorker()

	data, err := Encode(snap, s.opts.Compression)
	if err != nil {
		return 0, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.opts.Controller.WaitIO(ctx, len(data)); err != nil {
		return 0, err
	}
	if err := s.store.Put(ctx, name, data); err != nil {
		return 0, fmt.Errorf("write snapshot %q: %w", name, err)
	}

	return len(data), nil
}

// SaveAsync runs Save in a background goroutine, reporting the result on
// the returned channel. The worker limit of the configured Controller
// bounds how many saves run at once.
func (s *Saver) SaveAsync(ctx context.Context, name string, snap Snapshot) <-chan error {
	done := make(chan error, 1)
	go func() {
		_, err := s.Save(ctx, name, snap)
		done <- err
	}()
	return done
}

// Load reads and decodes a snapshot.
func (s *Saver) Load(ctx context.Context, name string) (Snapshot, error) {
	data, err := s.store.Get(ctx, name)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %q: %w", name, err)
	}

	return Decode(data)
}
