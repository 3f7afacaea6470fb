package dataloader

import (
	"github.com/sirupsen/logrus"
)

// ErrorMode selects how a failing fetch function is mapped onto the keys of its batch.
type ErrorMode int

const (
	// ErrorModeBatch fails every key of the batch with the fetch error.
	ErrorModeBatch ErrorMode = iota
	// ErrorModePerKey fails only the keys listed in a returned KeyErrors.
	ErrorModePerKey
)

type options struct {
	name      string
	log       logrus.FieldLogger
	maxBatch  int
	errorMode ErrorMode
	cache     bool
}

func defaultOptions() options {
	return options{
		name:  "loader",
		log:   logrus.StandardLogger(),
		cache: true,
	}
}

type Option func(*options)

// WithName names the loader in logs and errors.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxBatch splits a window into sequential fetches of at most n keys. Zero means unbounded.
// Keys are chunked in arrival order, so keys loaded by concurrent tasks may land in any chunk.
func WithMaxBatch(n int) Option {
	return func(o *options) {
		o.maxBatch = n
	}
}

func WithErrorMode(mode ErrorMode) Option {
	return func(o *options) {
		o.errorMode = mode
	}
}

// WithoutCache disables the request cache. Identical keys are still collapsed within a window.
func WithoutCache() Option {
	return func(o *options) {
		o.cache = false
	}
}
