package binding

import "strings"

// MethodClass partitions HTTP methods by whether they carry a payload
type MethodClass int

const (
	MethodUnclassified MethodClass = iota
	MethodReadOnly
	MethodPayload
)

// String returns the string representation of the method class
func (c MethodClass) String() string {
	switch c {
	case MethodReadOnly:
		return "read-only"
	case MethodPayload:
		return "payload"
	default:
		return "unclassified"
	}
}

// Options configures a Resolver
type Options struct {
	ReadOnlyMethods []string
	PayloadMethods  []string
	// HeaderLikeNames are parameter names that look like HTTP headers.
	// Matching ignores case, '-' and '_'.
	HeaderLikeNames []string
}

func methodSet(methods []string) map[string]bool {
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[strings.ToUpper(m)] = true
	}
	return set
}

// headerKey folds a name for header-like comparison
func headerKey(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer("-", "", "_", "").Replace(name)
}

// looksLikeHeader matches configured names and the xFoo / X_Foo / X-Foo convention
func (r *Resolver) looksLikeHeader(name string) bool {
	if r.headerNames[headerKey(name)] {
		return true
	}
	if len(name) < 2 || (name[0] != 'x' && name[0] != 'X') {
		return false
	}
	next := name[1]
	return next == '-' || next == '_' || (next >= 'A' && next <= 'Z')
}
