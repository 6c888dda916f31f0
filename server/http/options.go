package http

type Option func(*Options)

type Options struct {
	Address string
}

func WithAddress(address string) Option {
	return func(o *Options) {
		o.Address = address
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Address: ":8080",
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
