package mapper

import "reflect"

// Kind classifies a transfer field value.
type Kind int

const (
	// KindOther passes through untouched: nil, numbers, bools, []byte, maps.
	KindOther Kind = iota
	// KindLeaf is a string eligible for transfer.
	KindLeaf
	// KindSeq is a list whose elements are themselves field values.
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindSeq:
		return "seq"
	default:
		return "other"
	}
}

// KindOf classifies v.
func KindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindLeaf
	case []any, []string:
		return KindSeq
	case []byte, nil:
		return KindOther
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return KindSeq
	}
	return KindOther
}

// LeafFunc transforms one string leaf. It returns either a string or a
// payload such as []byte.
type LeafFunc func(leaf string) any

// Walk rebuilds v with fn applied to every string leaf. Sequences keep their
// length and nesting at every level, everything else is returned as is. v is
// never modified and every leaf is visited, whatever fn returns for its
// siblings.
func Walk(v any, fn LeafFunc) any {
	switch t := v.(type) {
	case string:
		return fn(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Walk(e, fn)
		}
		return out
	case []string:
		return walkStrings(t, fn)
	}

	if KindOf(v) != KindSeq {
		return v
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = Walk(rv.Index(i).Interface(), fn)
	}
	return out
}

// walkStrings keeps a []string typed as long as every result is a string.
func walkStrings(in []string, fn LeafFunc) any {
	results := make([]any, len(in))
	allStrings := true
	for i, s := range in {
		results[i] = fn(s)
		if _, ok := results[i].(string); !ok {
			allStrings = false
		}
	}
	if !allStrings {
		return results
	}

	out := make([]string, len(in))
	for i, r := range results {
		out[i] = r.(string)
	}
	return out
}
