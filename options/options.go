// Package options holds the settings of a mapper compiler.
package options

import (
	"io"
	"log/slog"
)

// Defaults for dictionary-keyed sources and fuzzy member matching.
const (
	DefaultSeparator      = "."
	DefaultElementPattern = "[%d]"
	DefaultMinScore       = 0.7
	DefaultMinGap         = 0.15
	DefaultMaxDepth       = 3
)

// Options configures a compiler. The zero value is not usable, start from Default.
type Options struct {
	// Logger receives debug records about cache misses, plan builds and fallbacks.
	Logger *slog.Logger
	// Categories lists the built-in conversions the coercion chain may use.
	Categories CategoryEnum
	// Fuzzy enables ranked fuzzy matching of member names as the last matching step.
	Fuzzy bool
	// MinScore and MinGap gate fuzzy matches, see match.CandidateList.HighConfidence.
	MinScore float64
	MinGap   float64
	// Separator joins nested member names into dictionary keys.
	Separator string
	// ElementPattern is appended to a key to address an enumerable element.
	ElementPattern string
	// StrictConstruction turns construction fallbacks into errors.
	StrictConstruction bool
	// MaxDepth bounds the source member paths walked by flattening.
	MaxDepth int
}

// Option mutates Options.
type Option func(*Options)

// Default returns the default options.
func Default() *Options {
	return &Options{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Categories:     CategoryAll,
		Fuzzy:          true,
		MinScore:       DefaultMinScore,
		MinGap:         DefaultMinGap,
		Separator:      DefaultSeparator,
		ElementPattern: DefaultElementPattern,
		MaxDepth:       DefaultMaxDepth,
	}
}

// Apply returns Default with opts applied in order.
func Apply(opts ...Option) *Options {
	o := Default()
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithLogger sets the logger. A nil logger keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithCategories restricts the built-in conversions.
func WithCategories(c CategoryEnum) Option {
	return func(o *Options) { o.Categories = c }
}

// WithFuzzyMatch enables fuzzy member matching with the given thresholds.
func WithFuzzyMatch(minScore, minGap float64) Option {
	return func(o *Options) {
		o.Fuzzy = true
		o.MinScore = minScore
		o.MinGap = minGap
	}
}

// WithoutFuzzyMatch limits member matching to tags and names.
func WithoutFuzzyMatch() Option {
	return func(o *Options) { o.Fuzzy = false }
}

// WithDictionaryKeys sets how keys are computed for dictionary sources,
// e.g. WithDictionaryKeys("_", "_%d") reads "Address_Street" and "Items_0".
func WithDictionaryKeys(separator, elementPattern string) Option {
	return func(o *Options) {
		o.Separator = separator
		o.ElementPattern = elementPattern
	}
}

// WithStrictConstruction reports unconstructable targets as errors.
func WithStrictConstruction() Option {
	return func(o *Options) { o.StrictConstruction = true }
}

// WithMaxDepth bounds member path walks; values below 1 are ignored.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		if depth > 0 {
			o.MaxDepth = depth
		}
	}
}
