package goproblem

// NumberMode dictates how numbers read into extension values are materialized.
type NumberMode int

const (
	// NumberNative yields int64 for integer literals that fit and float64
	// otherwise.
	NumberNative NumberMode = iota
	// NumberJSONNumber preserves the literal as json.Number.
	NumberJSONNumber
	// NumberFloat64 yields float64 for every number (with potential precision loss).
	NumberFloat64
)

// ReadOpt bundles options for the Unmarshal family.
type ReadOpt struct {
	NumberMode    NumberMode
	setNumberMode bool
	// MaxBytes rejects inputs larger than this many bytes. Zero disables the cap.
	MaxBytes int64
}

// ReadOption customizes a ReadOpt.
type ReadOption func(*ReadOpt)

// WithNumbers selects how extension numbers are materialized.
func WithNumbers(m NumberMode) ReadOption {
	return func(o *ReadOpt) {
		o.NumberMode = m
		o.setNumberMode = true
	}
}

// WithMaxBytes caps the accepted input size.
func WithMaxBytes(n int64) ReadOption {
	return func(o *ReadOpt) { o.MaxBytes = n }
}

func buildReadOpt(opts []ReadOption) ReadOpt {
	var o ReadOpt
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WriteOpt bundles options for the Marshal family.
type WriteOpt struct {
	Indent string
}
