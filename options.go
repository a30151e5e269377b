package docshift

// Option configures an Engine.
type Option func(*Engine)

// WithImageLoader sets the loader used by parsers that reference
// images by name (default: references stay as unresolved keys).
func WithImageLoader(loader ImageLoader) Option {
	return func(e *Engine) {
		e.loader = loader
	}
}

// WithImageSink sets the sink used by generators that externalize
// images (default: collect into the returned bundle only).
func WithImageSink(sink ImageSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithWarningSink sets the destination for fidelity warnings emitted
// when a generator drops an element (default: discard).
func WithWarningSink(sink WarningSink) Option {
	return func(e *Engine) {
		e.warn = sink
	}
}
