package enum

import (
	"fmt"
	"reflect"
	"sync"
)

// registry maps an enum type to the set of its registered string forms.
var (
	registry   = map[reflect.Type]map[string]any{}
	registryMu sync.RWMutex
)

// New registers value as a member of its enum type and returns it, so it can
// be used directly in a var block.
func New[T comparable](value T) T {
	registryMu.Lock()
	defer registryMu.Unlock()

	t := reflect.TypeOf(value)
	members, ok := registry[t]
	if !ok {
		members = map[string]any{}
		registry[t] = members
	}

	members[fmt.Sprint(value)] = value
	return value
}

// ToEnum parses s into a registered member of T. Matching is case sensitive.
func ToEnum[T comparable](s string) (T, error) {
	var zero T

	registryMu.RLock()
	defer registryMu.RUnlock()

	members, ok := registry[reflect.TypeOf(zero)]
	if !ok {
		return zero, fmt.Errorf("enum type %T has no member", zero)
	}

	v, ok := members[s]
	if !ok {
		return zero, fmt.Errorf("%q is not a member of enum %T", s, zero)
	}

	return v.(T), nil
}
