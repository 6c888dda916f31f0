package session

import "context"

const DefaultWindowSize = 3

type Option func(*Options)

type Options struct {
	WindowSize int
	Context    context.Context
}

func WithWindowSize(size int) Option {
	return func(o *Options) {
		o.WindowSize = size
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		WindowSize: DefaultWindowSize,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
