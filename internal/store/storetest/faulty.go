// Package storetest provides store doubles for tests in other packages.
package storetest

import (
	"context"
	"errors"

	"github.com/matthieukhl/shopcore/internal/store"
	"go.uber.org/atomic"
)

// ErrInjected is returned by a Faulty store while failures are switched on.
var ErrInjected = errors.New("injected store failure")

// Faulty is an in-memory store whose writes can be made to fail.
type Faulty struct {
	*store.Memory

	failCommits atomic.Bool
	commits     atomic.Int64
}

func NewFaulty() *Faulty {
	return &Faulty{Memory: store.NewMemory()}
}

// FailCommits switches write failures on or off.
func (f *Faulty) FailCommits(fail bool) {
	f.failCommits.Store(fail)
}

// Commits counts successful Commit calls.
func (f *Faulty) Commits() int64 {
	return f.commits.Load()
}

func (f *Faulty) Commit(ctx context.Context, writes ...store.Write) error {
	if f.failCommits.Load() {
		return ErrInjected
	}
	if err := f.Memory.Commit(ctx, writes...); err != nil {
		return err
	}
	f.commits.Inc()
	return nil
}

func (f *Faulty) Save(ctx context.Context, collection string, records map[string][]byte) error {
	if f.failCommits.Load() {
		return ErrInjected
	}
	return f.Memory.Save(ctx, collection, records)
}
