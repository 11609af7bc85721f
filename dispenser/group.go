package dispenser

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

// Group holds named dispensers, for example the heads of one dispensing cell.
// It is safe for concurrent use.
type Group struct {
	dispensers *xsync.MapOf[string, *Dispenser]
}

// NewGroup creates an empty group.
func NewGroup() *Group {
	return &Group{dispensers: xsync.NewMapOf[string, *Dispenser]()}
}

// OpenGroup creates and opens one dispenser per configuration, concurrently.
// If any of them fails to open, the ones already opened are closed and the
// first error is returned.
func OpenGroup(ctx context.Context, cfgs []*Config) (*Group, error) {
	g := NewGroup()
	for _, cfg := range cfgs {
		d, err := New(cfg)
		if err != nil {
			return nil, err
		}
		if err := g.Add(d); err != nil {
			return nil, err
		}
	}

	err := g.Each(ctx, func(_ context.Context, d *Dispenser) error {
		if err := d.Open(); err != nil {
			return fmt.Errorf("%s: %w", d.Name(), err)
		}

		return nil
	})
	if err != nil {
		_ = g.Close()
		return nil, err
	}

	return g, nil
}

// Add adds d under its name.
func (g *Group) Add(d *Dispenser) error {
	if _, loaded := g.dispensers.LoadOrStore(d.Name(), d); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateName, d.Name())
	}

	return nil
}

// Get returns the dispenser named name.
func (g *Group) Get(name string) (*Dispenser, bool) {
	return g.dispensers.Load(name)
}

// Remove removes the dispenser named name from the group without closing it.
func (g *Group) Remove(name string) (*Dispenser, bool) {
	return g.dispensers.LoadAndDelete(name)
}

// Len returns the number of dispensers.
func (g *Group) Len() int {
	return g.dispensers.Size()
}

// Names returns the sorted dispenser names.
func (g *Group) Names() []string {
	names := make([]string, 0, g.dispensers.Size())
	g.dispensers.Range(func(name string, _ *Dispenser) bool {
		names = append(names, name)
		return true
	})
	slices.Sort(names)

	return names
}

// Range calls fn for each dispenser until fn returns false.
func (g *Group) Range(fn func(d *Dispenser) bool) {
	g.dispensers.Range(func(_ string, d *Dispenser) bool {
		return fn(d)
	})
}

// Each calls fn for every dispenser concurrently and waits for all calls.
// The context passed to fn is cancelled as soon as one call fails; the
// first error is returned.
func (g *Group) Each(ctx context.Context, fn func(ctx context.Context, d *Dispenser) error) error {
	eg, ctx := errgroup.WithContext(ctx)
	g.Range(func(d *Dispenser) bool {
		eg.Go(func() error { return fn(ctx, d) })
		return true
	})

	return eg.Wait()
}

// Close closes every dispenser and returns the joined errors.
func (g *Group) Close() error {
	var errs []error
	g.Range(func(d *Dispenser) bool {
		if err := d.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
		}
		return true
	})

	return errors.Join(errs...)
}
