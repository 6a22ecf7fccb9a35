// internal/modes/registry.go
package modes

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Strategy is a pluggable bot behavior selected by mode name.
type Strategy interface {
	Run(ctx context.Context) error
}

// StrategyFunc adapts a plain function to a Strategy.
type StrategyFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f StrategyFunc) Run(ctx context.Context) error { return f(ctx) }

// Entry binds a mode key to its strategy.
type Entry struct {
	Key      string
	Strategy Strategy
}

// UnknownModeError is returned by Resolve for a key that was never registered.
type UnknownModeError struct {
	Key       string
	Available []string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode %q (available: %s)", e.Key, strings.Join(e.Available, ", "))
}

// ConflictError is returned by NewRegistry when two entries share a key.
type ConflictError struct {
	Key string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("mode %q is registered more than once", e.Key)
}

var (
	errEmptyKey    = errors.New("mode key must not be empty")
	errNilStrategy = errors.New("mode strategy must not be nil")
)

// Registry maps mode keys to strategies. It is immutable once built, so
// lookups are safe from any goroutine.
type Registry struct {
	strategies map[string]Strategy
	keys       []string
}

// NewRegistry builds a registry from entries. Duplicate keys are rejected
// with a *ConflictError rather than overwritten.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{
		strategies: make(map[string]Strategy, len(entries)),
		keys:       make([]string, 0, len(entries)),
	}
	for i, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("entry %d: %w", i, errEmptyKey)
		}
		if isNilStrategy(e.Strategy) {
			return nil, fmt.Errorf("entry %q: %w", e.Key, errNilStrategy)
		}
		if _, exists := r.strategies[e.Key]; exists {
			return nil, &ConflictError{Key: e.Key}
		}
		r.strategies[e.Key] = e.Strategy
		r.keys = append(r.keys, e.Key)
	}
	sort.Strings(r.keys)
	return r, nil
}

// isNilStrategy also catches a nil pointer or func stored in the interface,
// which would otherwise only fail when Run is called.
func isNilStrategy(s Strategy) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Resolve returns the strategy registered under key.
func (r *Registry) Resolve(key string) (Strategy, error) {
	s, ok := r.strategies[key]
	if !ok {
		return nil, &UnknownModeError{Key: key, Available: r.Keys()}
	}
	return s, nil
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of registered modes.
func (r *Registry) Len() int { return len(r.keys) }
