package options_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"shape-mapper/options"
)

func TestApply(t *testing.T) {
	o := options.Apply()
	assert.Equal(t, options.CategoryAll, o.Categories)
	assert.True(t, o.Fuzzy)
	assert.Equal(t, ".", o.Separator)
	assert.Equal(t, "[%d]", o.ElementPattern)
	assert.NotNil(t, o.Logger)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	o = options.Apply(
		options.WithLogger(logger),
		options.WithCategories(options.CategoryLossless),
		options.WithoutFuzzyMatch(),
		options.WithDictionaryKeys("_", "_%d"),
		options.WithStrictConstruction(),
	)

	assert.Same(t, logger, o.Logger)
	assert.Zero(t, o.Categories&options.CategoryUnsafeNumber)
	assert.NotZero(t, o.Categories&options.CategorySafeNumber)
	assert.False(t, o.Fuzzy)
	assert.Equal(t, "_", o.Separator)
	assert.True(t, o.StrictConstruction)

	o = options.Apply(options.WithLogger(nil), options.WithFuzzyMatch(0.5, 0.1))
	assert.NotNil(t, o.Logger)
	assert.InDelta(t, 0.5, o.MinScore, 1e-9)
}
