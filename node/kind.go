package node

//go:generate go tool stringer -type=Kind -trimprefix=Kind

// Kind tags the variant of an IR Node.
type Kind int

const (
	KindUnknown      Kind = iota
	KindSource            // member path read from the mapped source
	KindEntireSource      // the mapped source itself
	KindItem              // the element or entry value being mapped
	KindConstant          // fixed value
	KindFunc              // user function applied to Arg or to the context
	KindExpression        // expression evaluated in the context
	KindLookup            // dictionary entry of Arg, key matched case-insensitively
	KindSubset            // entries of dictionary Arg under a key prefix, prefix removed
	KindIndexed           // dictionary entries of Arg addressed by element keys, as a slice
	KindConvert           // coercion applied to Arg
	KindNested            // Arg mapped by the compiled mapper of Pair
	KindElements          // each element of Arg mapped by Elem
	KindEntries           // each entry of Arg mapped by KeyElem and Elem
	KindExisting          // current value of the target member
	KindDefault           // zero value of Type

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)
