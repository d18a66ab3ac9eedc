package bridge

import (
	"slices"
	"strings"
)

// ExecutionContext is the environment inside a place that runs a job.
type ExecutionContext string

const (
	ContextEdit   ExecutionContext = "Edit"
	ContextServer ExecutionContext = "Server"
	ContextClient ExecutionContext = "Client"
)

// Contexts lists every execution context in queue order.
var Contexts = []ExecutionContext{ContextEdit, ContextServer, ContextClient}

// ParseContext normalizes a context name. Matching is case-insensitive and
// anything unrecognised (including "") becomes Edit; ok reports whether the
// input named a real context.
func ParseContext(s string) (ctx ExecutionContext, ok bool) {
	for _, c := range Contexts {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, true
		}
	}
	return ContextEdit, false
}

// IsSession reports whether c is a play-session context (Server or Client).
func (c ExecutionContext) IsSession() bool {
	return c == ContextServer || c == ContextClient
}

func (c ExecutionContext) String() string { return string(c) }

// ContextSet is a set of execution contexts. The zero value is empty.
type ContextSet map[ExecutionContext]struct{}

func (s ContextSet) Has(c ExecutionContext) bool {
	_, ok := s[c]
	return ok
}

// Slice returns the members in the fixed Edit/Server/Client order.
func (s ContextSet) Slice() []ExecutionContext {
	out := make([]ExecutionContext, 0, len(s))
	for _, c := range Contexts {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Clone copies the set. Cloning nil yields an empty non-nil set.
func (s ContextSet) Clone() ContextSet {
	out := make(ContextSet, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

func newContextSet(cs ...ExecutionContext) ContextSet {
	s := make(ContextSet, len(cs))
	for _, c := range cs {
		s[c] = struct{}{}
	}
	return s
}

func containsSession(s ContextSet) bool {
	return slices.ContainsFunc(s.Slice(), ExecutionContext.IsSession)
}
