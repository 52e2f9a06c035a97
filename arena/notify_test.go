package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueDelivery(t *testing.T) {
	q := NewQueue(4)

	q.Success("minted %d", 3)
	q.Error("fight failed: %s", "reverted")

	n := <-q.C()
	require.Equal(t, SeveritySuccess, n.Severity)
	require.Equal(t, "minted 3", n.Text)
	require.False(t, n.At.IsZero())

	n = <-q.C()
	require.Equal(t, SeverityError, n.Severity)
	require.Equal(t, "fight failed: reverted", n.Text)
}

// A slow consumer never blocks producers; overflow is counted, not queued.
func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2)

	q.Success("one")
	q.Success("two")
	q.Success("three")
	q.Error("four")

	require.EqualValues(t, 2, q.Dropped())
	require.Len(t, q.C(), 2)

	require.Equal(t, "one", (<-q.C()).Text)
	require.Equal(t, "two", (<-q.C()).Text)
}

func TestQueueDefaultSize(t *testing.T) {
	q := NewQueue(0)

	for i := 0; i < 64; i++ {
		q.Success("n")
	}

	require.Zero(t, q.Dropped())
}
