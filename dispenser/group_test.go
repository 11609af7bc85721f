package dispenser

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afornelas/Nordson-EFD/efd"
)

func newNamedDispenser(t *testing.T, name string, tr Transport) *Dispenser {
	t.Helper()

	d, err := New(newTestConfig(t, tr, WithName(name)))
	require.NoError(t, err)

	return d
}

func TestGroup_AddGetRemove(t *testing.T) {
	g := NewGroup()
	left := newNamedDispenser(t, "left", newFakeTransport())
	right := newNamedDispenser(t, "right", newFakeTransport())

	require.NoError(t, g.Add(right))
	require.NoError(t, g.Add(left))
	require.ErrorIs(t, g.Add(newNamedDispenser(t, "left", newFakeTransport())), ErrDuplicateName)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{"left", "right"}, g.Names())

	d, ok := g.Get("left")
	require.True(t, ok)
	assert.Same(t, left, d)

	d, ok = g.Remove("right")
	require.True(t, ok)
	assert.Same(t, right, d)

	_, ok = g.Get("right")
	assert.False(t, ok)
	assert.Equal(t, 1, g.Len())
}

func TestOpenGroup(t *testing.T) {
	trs := []*fakeTransport{
		newFakeTransport(ackRead(), reply(efd.SuccessFrame)),
		newFakeTransport(ackRead(), reply(efd.SuccessFrame)),
	}
	cfgs := []*Config{
		newTestConfig(t, trs[0], WithName("left")),
		newTestConfig(t, trs[1], WithName("right")),
	}

	g, err := OpenGroup(context.Background(), cfgs)
	require.NoError(t, err)

	var succeeded atomic.Int32
	err = g.Each(context.Background(), func(ctx context.Context, d *Dispenser) error {
		assert.True(t, d.IsOpen())

		tx, err := d.Dispense(ctx)
		if err != nil {
			return err
		}
		if tx.Outcome == Succeeded {
			succeeded.Add(1)
		}

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), succeeded.Load())

	require.NoError(t, g.Close())
	for _, tr := range trs {
		assert.True(t, tr.IsClosed())
	}
}

func TestOpenGroup_DuplicateName(t *testing.T) {
	cfgs := []*Config{
		newTestConfig(t, newFakeTransport(), WithName("left")),
		newTestConfig(t, newFakeTransport(), WithName("left")),
	}

	_, err := OpenGroup(context.Background(), cfgs)
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestOpenGroup_OpenFailureClosesOthers(t *testing.T) {
	good := newFakeTransport()
	bad, err := NewConfig("/dev/does-not-exist-efd", WithLogger(newTestLogger()))
	require.NoError(t, err)

	cfgs := []*Config{
		newTestConfig(t, good, WithName("good")),
		bad,
	}

	g, err := OpenGroup(context.Background(), cfgs)
	require.ErrorIs(t, err, ErrTransport)
	assert.Nil(t, g)
	assert.True(t, good.IsClosed())
}

func TestGroup_EachReturnsFirstError(t *testing.T) {
	g := NewGroup()
	require.NoError(t, g.Add(newNamedDispenser(t, "a", newFakeTransport())))
	require.NoError(t, g.Add(newNamedDispenser(t, "b", newFakeTransport())))

	boom := errors.New("boom")
	err := g.Each(context.Background(), func(_ context.Context, d *Dispenser) error {
		if d.Name() == "b" {
			return boom
		}

		return nil
	})
	require.ErrorIs(t, err, boom)
}

func TestGroup_CloseJoinsErrors(t *testing.T) {
	tr := newFakeTransport()
	tr.closeErr = errors.New("stuck")

	g, err := OpenGroup(context.Background(), []*Config{
		newTestConfig(t, tr, WithName("a")),
		newTestConfig(t, newFakeTransport(), WithName("b")),
	})
	require.NoError(t, err)

	err = g.Close()
	require.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "a:")
}
