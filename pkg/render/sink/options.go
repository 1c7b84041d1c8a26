package sink

// Option configures a sink.
type Option func(*renderer)

type renderer struct {
	theme     Theme
	showNodes bool
	scale     float64
	indent    bool
}

func newRenderer(opts ...Option) renderer {
	r := renderer{theme: DefaultTheme(), scale: 1}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func WithTheme(t Theme) Option { return func(r *renderer) { r.theme = t } }
func WithNodes() Option        { return func(r *renderer) { r.showNodes = true } }
func WithIndent() Option       { return func(r *renderer) { r.indent = true } }

// WithScale multiplies the output size: PNG pixels, SVG width and height
// (2 gives a high-DPI image). Non-positive values are ignored.
func WithScale(s float64) Option {
	return func(r *renderer) {
		if s > 0 {
			r.scale = s
		}
	}
}
