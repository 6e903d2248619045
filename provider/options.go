package provider

import "math/rand/v2"

// Option configures a Provider.
type Option func(*options)

type options struct {
	width     int
	height    int
	overwrite bool
	maxSize   int64
	prefix    string
	rnd       *rand.Rand
}

func newOptions(opts []Option) options {
	o := options{
		width:   defaultWidth,
		height:  defaultHeight,
		maxSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) provider(rawURL, dest string) Provider {
	return Provider{
		url:       rawURL,
		dest:      dest,
		overwrite: o.overwrite,
		maxSize:   o.maxSize,
	}
}

// WithSize sets the requested image dimensions. Non-positive values keep the 640x480 default.
func WithSize(width, height int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
		if height > 0 {
			o.height = height
		}
	}
}

// WithOverwrite allows replacing an existing destination.
func WithOverwrite(allow bool) Option {
	return func(o *options) {
		o.overwrite = allow
	}
}

// WithMaxFileSize sets the size budget in bytes; zero or less is unlimited.
func WithMaxFileSize(n int64) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

// WithPrefix prepends prefix to generated file names.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRand sets the randomness source for ids and file names.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rnd = r
	}
}
