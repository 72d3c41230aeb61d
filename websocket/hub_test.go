package websocket

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []StatsMessage
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(StatsMessage))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []StatsMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StatsMessage(nil), c.messages...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHubBroadcastsAndDropsBrokenClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	healthy := &fakeConn{}
	broken := &fakeConn{fail: true}
	require.True(t, hub.Join(NewClient(healthy)))
	require.True(t, hub.Join(NewClient(broken)))
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Publish(models.Stats{TotalTutors: 3})

	require.Eventually(t, func() bool { return len(healthy.received()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "stats", healthy.received()[0].Type)
	assert.Equal(t, int64(3), healthy.received()[0].Stats.TotalTutors)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestHubUnregisterAndStop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn := &fakeConn{}
	client := NewClient(conn)
	hub.Join(client)
	hub.Leave(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	other := &fakeConn{}
	hub.Join(NewClient(other))
	hub.Stop()
	assert.True(t, other.isClosed())
	assert.Equal(t, 0, hub.ClientCount())

	hub.Stop()
	assert.False(t, hub.Join(NewClient(&fakeConn{})))
	hub.Publish(models.Stats{})
}
