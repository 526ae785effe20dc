package chat

import (
	"context"
	"math/rand"
	"time"

	"github.com/Aashutosh-Basnet/livelizzyapp/internal/config"
)

// fillerComments is the canned pool the bot draws from while a stream is
// live.
var fillerComments = []string{
	"Hello, how are you?",
	"What's up?",
	"How's it going?",
	"Hi, I'm a bot!",
	"What's on your mind?",
	"This stream is great!",
	"Greetings from the chat bot",
}

// Bot posts filler comments while a publishing session is active. It is
// started on publish start and cancelled through its context on publish
// stop or publisher disconnect, so a task never outlives its session.
type Bot struct {
	cfg  config.BotConfig
	post func(author, body string)
	rng  *rand.Rand
}

// NewBot creates a bot that delivers comments through post. The post
// function goes through the normal chat path so history and broadcast
// semantics hold for bot messages too.
func NewBot(cfg config.BotConfig, post func(author, body string)) *Bot {
	return &Bot{
		cfg:  cfg,
		post: post,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run posts one comment immediately, then keeps posting on a randomized
// delay until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.post(b.cfg.Author, b.pick())

	for {
		timer := time.NewTimer(b.delay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			b.post(b.cfg.Author, b.pick())
		}
	}
}

func (b *Bot) pick() string {
	return fillerComments[b.rng.Intn(len(fillerComments))]
}

func (b *Bot) delay() time.Duration {
	min, max := b.cfg.MinDelay, b.cfg.MaxDelay
	if max <= min {
		return min
	}
	return min + time.Duration(b.rng.Int63n(int64(max-min)))
}
