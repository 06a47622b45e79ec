package common

import (
	"path"
	"reflect"
	"runtime"
	"strings"

	"shape-mapper/utils"
)

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return utils.Second(path.Split(strings.TrimSuffix(pkgPath, "/")))
}

// Deref strips every pointer level from t.
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	return t
}

// TypeName returns a short, package-qualified name for t, e.g. "store.Order".
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// FuncName splits the runtime name of fn, e.g. "example.com/store.(*T).CreateX-fm",
// into its package path and the bare function name.
func FuncName(fn reflect.Value) (pkgPath, name string) {
	full := runtime.FuncForPC(fn.Pointer()).Name()

	slash := strings.LastIndex(full, "/") + 1
	pkg, rest := utils.Unpack2(strings.SplitN(full[slash:], ".", 2))

	name = strings.TrimSuffix(rest[strings.LastIndex(rest, ".")+1:], "-fm")

	return full[:slash] + pkg, name
}
