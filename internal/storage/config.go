package storage

import "time"

// Option alters the default configuration used during new Store construction
type Option interface {
	apply(*config)
}

type optionFunc func(c *config)

func (f optionFunc) apply(c *config) { f(c) }

type config struct {
	seed bool
	now  func() time.Time
}

// WithSeed fills the new Store with the demo listing, chats and services catalogue
func WithSeed() Option {
	return optionFunc(func(c *config) {
		c.seed = true
	})
}

// WithClock replaces time.Now as the source of creation and message timestamps
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *config) {
		c.now = now
	})
}
