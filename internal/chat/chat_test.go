package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
)

func TestPostAssignsIDAndTimestamp(t *testing.T) {
	l := NewLog(10)

	before := time.Now().UTC()
	msg := l.Post("alice", "hello", "")
	after := time.Now().UTC()

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "alice", msg.Author)
	assert.False(t, msg.Timestamp.Before(before))
	assert.False(t, msg.Timestamp.After(after))
}

func TestPostKeepsClientID(t *testing.T) {
	l := NewLog(10)
	msg := l.Post("bob", "hi", "client-id-1")
	assert.Equal(t, "client-id-1", msg.ID)
}

func TestNoServerSideDedup(t *testing.T) {
	l := NewLog(10)
	l.Post("a", "one", "same-id")
	l.Post("a", "two", "same-id")
	assert.Equal(t, 2, l.Len())
}

func TestFIFOEviction(t *testing.T) {
	l := NewLog(100)

	for i := 1; i <= 101; i++ {
		l.Post("u", fmt.Sprintf("m%d", i), fmt.Sprintf("id%d", i))
	}

	history := l.History()
	require.Len(t, history, 100)
	assert.Equal(t, "m2", history[0].Body)
	assert.Equal(t, "m101", history[99].Body)

	// Original order preserved
	for i, msg := range history {
		assert.Equal(t, fmt.Sprintf("m%d", i+2), msg.Body)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	l := NewLog(10)
	l.Post("a", "original", "id1")

	history := l.History()
	history[0].Body = "mutated"

	assert.Equal(t, "original", l.History()[0].Body)
}

func TestBotPostsUntilCancelled(t *testing.T) {
	var mu sync.Mutex
	var bodies []string

	bot := NewBot(config.BotConfig{
		Author:   "Bot",
		MinDelay: time.Millisecond,
		MaxDelay: 5 * time.Millisecond,
	}, func(author, body string) {
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bot.Run(ctx)
		close(done)
	}()

	// First message is posted immediately, then more on the interval
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) >= 2
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bot did not stop after cancellation")
	}

	mu.Lock()
	stopped := len(bodies)
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, stopped, len(bodies), "bot posted after cancellation")
	mu.Unlock()
}
