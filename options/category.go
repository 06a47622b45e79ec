package options

import "shape-mapper/primitive"

// CategoryEnum selects the built-in conversion families the coercion chain may use.
type CategoryEnum = primitive.CategoryEnum

const (
	CategorySafeNumber   = primitive.CategorySafeNumber
	CategoryUnsafeNumber = primitive.CategoryUnsafeNumber
	CategoryTextNumber   = primitive.CategoryTextNumber
	CategoryNumericBool  = primitive.CategoryNumericBool
	CategoryTextualBool  = primitive.CategoryTextualBool
	CategoryDatetime     = primitive.CategoryDatetime
	CategoryTimestamp    = primitive.CategoryTimestamp
	CategoryDuration     = primitive.CategoryDuration
	CategoryNanoseconds  = primitive.CategoryNanoseconds
	CategorySeconds      = primitive.CategorySeconds
	CategoryEnumString   = primitive.CategoryEnumString
	CategoryEnumNumber   = primitive.CategoryEnumNumber
	CategoryBase64       = primitive.CategoryBase64
	CategoryChar         = primitive.CategoryChar

	CategoryAll  CategoryEnum = primitive.CategoryAll
	CategoryNone CategoryEnum = primitive.CategoryNone

	// CategoryLossless excludes conversions that may drop information silently.
	CategoryLossless = CategoryAll &^ CategoryUnsafeNumber &^ CategorySeconds
)
