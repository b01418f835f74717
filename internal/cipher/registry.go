package cipher

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry maps algorithm keys and short codes to algorithms. It is built
// once and never mutated, so lookups need no locking.
type Registry struct {
	byKey  map[string]Algorithm
	byCode map[string]Algorithm
	order  []Algorithm
}

// NewRegistry validates algs and builds a registry from them. Keys and
// short codes must be unique; codes are compared case-insensitively.
func NewRegistry(algs ...Algorithm) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[string]Algorithm, len(algs)),
		byCode: make(map[string]Algorithm, len(algs)),
		order:  make([]Algorithm, 0, len(algs)),
	}

	for _, alg := range algs {
		if alg.Key == "" || alg.Code == "" || alg.Encode == nil || alg.Decode == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidAlgorithm, alg.Key)
		}
		if _, exists := r.byKey[alg.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, alg.Key)
		}
		code := normalizeCode(alg.Code)
		if _, exists := r.byCode[code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, alg.Code)
		}
		r.byKey[alg.Key] = alg
		r.byCode[code] = alg
		r.order = append(r.order, alg)
	}

	sort.SliceStable(r.order, func(i, j int) bool {
		return codeLess(r.order[i].Code, r.order[j].Code)
	})

	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the registry of the 18 built-in algorithms.
func Default() *Registry {
	return defaultRegistry()
}

// Get retrieves an algorithm by key.
func (r *Registry) Get(key string) (Algorithm, bool) {
	alg, ok := r.byKey[key]
	return alg, ok
}

// FindByCode retrieves an algorithm by short code, ignoring case and
// surrounding whitespace.
func (r *Registry) FindByCode(code string) (Algorithm, bool) {
	alg, ok := r.byCode[normalizeCode(code)]
	return alg, ok
}

// List returns all algorithms ordered by short code (C1, C2, ... C18).
func (r *Registry) List() []Algorithm {
	out := make([]Algorithm, len(r.order))
	copy(out, r.order)
	return out
}

// Keys returns all algorithm keys in short-code order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.order))
	for i, alg := range r.order {
		keys[i] = alg.Key
	}
	return keys
}

// Len reports the number of registered algorithms.
func (r *Registry) Len() int {
	return len(r.order)
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// codeLess orders codes by their alphabetic prefix, then numerically, so
// C2 sorts before C10.
func codeLess(a, b string) bool {
	pa, na := splitCode(a)
	pb, nb := splitCode(b)
	if pa != pb {
		return pa < pb
	}
	if na != nb {
		return na < nb
	}
	return a < b
}

func splitCode(code string) (string, int) {
	code = normalizeCode(code)
	i := strings.IndexFunc(code, func(r rune) bool { return r >= '0' && r <= '9' })
	if i < 0 {
		return code, -1
	}
	n, err := strconv.Atoi(code[i:])
	if err != nil {
		return code, -1
	}
	return code[:i], n
}
