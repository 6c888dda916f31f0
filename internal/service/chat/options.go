package chat

import "time"

type Option func(*Options)

type Options struct {
	LockTimeout time.Duration
	CallTimeout time.Duration
}

func WithLockTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.LockTimeout = d
	}
}

func WithCallTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.CallTimeout = d
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		LockTimeout: 5 * time.Second,
		CallTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
