// Package symbols implements the FX compiler's scope stack, namespace
// chain, and overload resolution. It sits directly on package types for
// conversion ranking and has no SPIR-V dependency of its own — the parser
// attaches a SPIR-V result id to each resolved symbol.
package symbols

import (
	"sort"
	"strings"

	"github.com/fxsl/fxc/types"
)

// Kind distinguishes what a Symbol names.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindStruct
	KindNamespace
)

// Symbol is one named entity visible in some scope.
type Symbol struct {
	Name string
	Kind Kind
	Type types.Type
	// ValueID is the SPIR-V id bound to this symbol (a variable pointer,
	// a function id, or a type id), filled in by the parser as it emits.
	ValueID uint32
	// Params holds parameter types for KindFunction symbols, used by
	// overload resolution.
	Params []types.Type
	// Overloads chains every function symbol sharing this name in the
	// same scope; the first inserted overload owns the chain.
	Overloads []*Symbol
}

// scope is one lexical block: a namespace name (empty for ordinary
// blocks) and its own symbol map.
type scope struct {
	namespace string
	symbols   map[string]*Symbol
}

// Table is the compiler's scope stack. Scope 0 is the global scope and is
// never popped.
type Table struct {
	scopes     []*scope
	namespaces []string // current open namespace chain, e.g. ["ps","utils"]
}

// NewTable creates a table with just the global scope open.
func NewTable() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, &scope{symbols: map[string]*Symbol{}})
	return t
}

// EnterScope pushes a new anonymous lexical scope (e.g. a function body
// or a block statement).
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, &scope{symbols: map[string]*Symbol{}})
}

// LeaveScope pops the innermost lexical scope. It is a no-op (and
// programmer error in the caller) to call this on the global scope.
func (t *Table) LeaveScope() {
	if len(t.scopes) <= 1 {
		return
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// EnterNamespace opens a named namespace, which both pushes a scope and
// extends the qualified-name chain used by Insert for "::"-qualified
// global bindings.
func (t *Table) EnterNamespace(name string) {
	t.namespaces = append(t.namespaces, name)
	t.EnterScope()
}

// LeaveNamespace closes the innermost open namespace.
func (t *Table) LeaveNamespace() {
	if len(t.namespaces) > 0 {
		t.namespaces = t.namespaces[:len(t.namespaces)-1]
	}
	t.LeaveScope()
}

// QualifiedName renders name prefixed by the currently open namespace
// chain, e.g. "ps::utils::foo".
func (t *Table) QualifiedName(name string) string {
	if len(t.namespaces) == 0 {
		return name
	}
	return strings.Join(t.namespaces, "::") + "::" + name
}

// Insert adds sym to the innermost scope under its own Name, and — when a
// namespace chain is open — additionally binds it under every suffix of
// the qualified name so that "ps::utils::foo", "utils::foo", and "foo" all
// resolve from within the namespace. A suffix already bound in the global
// scope is replaced (or, when both are functions, gains an overload); no
// ambiguity check is made.
//
// Function symbols with a name collision in the same scope become
// overloads of each other instead of shadowing; any other kind collision
// replaces the previous binding (re-declaration, which the caller should
// have already diagnosed).
func (t *Table) Insert(sym *Symbol) {
	top := t.scopes[len(t.scopes)-1]
	if existing, ok := top.symbols[sym.Name]; ok && existing.Kind == KindFunction && sym.Kind == KindFunction {
		existing.Overloads = append(existing.Overloads, sym)
		return
	}
	top.symbols[sym.Name] = sym

	if len(t.namespaces) == 0 {
		return
	}
	global := t.scopes[0]
	parts := append(append([]string{}, t.namespaces...), sym.Name)
	for i := 0; i < len(parts); i++ {
		qualified := strings.Join(parts[i:], "::")
		if existing, ok := global.symbols[qualified]; ok && existing.Kind == KindFunction && sym.Kind == KindFunction {
			existing.Overloads = append(existing.Overloads, sym)
			continue
		}
		global.symbols[qualified] = sym
	}
}

// Find looks up name from the innermost scope outward, returning the
// first match.
func (t *Table) Find(name string) (*Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// FindLocal restricts the lookup to the innermost scope, the "exclusive"
// variant of find used for redefinition checks.
func (t *Table) FindLocal(name string) (*Symbol, bool) {
	top := t.scopes[len(t.scopes)-1]
	sym, ok := top.symbols[name]
	return sym, ok
}

// candidate pairs a function overload with its per-argument conversion
// ranks against a call's argument types, sorted descending so candidates
// compare by their worst conversion first.
type candidate struct {
	sym   *Symbol
	ranks []int
}

// ResolveCall finds the best-matching overload of name for the given
// argument types. Every overload whose parameter count matches is scored
// by types.ConversionRank per argument/parameter pair; any zero rank
// disqualifies the overload. Each surviving candidate's ranks are sorted
// descending and compared lexicographically: the first position where two
// candidates differ decides, with the smaller rank (the closer
// conversion) winning. Two candidates with identical sorted ranks are
// ambiguous.
func (t *Table) ResolveCall(name string, args []types.Type) (*Symbol, error) {
	base, ok := t.Find(name)
	if !ok || base.Kind != KindFunction {
		return nil, &NotFoundError{Name: name}
	}

	all := append([]*Symbol{base}, base.Overloads...)
	var candidates []candidate
	for _, sym := range all {
		if len(sym.Params) != len(args) {
			continue
		}
		ranks := make([]int, len(args))
		disqualified := false
		for i, arg := range args {
			r := types.ConversionRank(arg, sym.Params[i])
			if r == 0 {
				disqualified = true
				break
			}
			ranks[i] = r
		}
		if disqualified {
			continue
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
		candidates = append(candidates, candidate{sym: sym, ranks: ranks})
	}

	if len(candidates) == 0 {
		return nil, &NoOverloadError{Name: name, Args: args}
	}

	best := candidates[0]
	ambiguous := false
	for _, c := range candidates[1:] {
		switch compareRanks(c.ranks, best.ranks) {
		case -1:
			best = c
			ambiguous = false
		case 0:
			ambiguous = true
		}
	}
	if ambiguous {
		return nil, &AmbiguousCallError{Name: name, Args: args}
	}
	return best.sym, nil
}

// compareRanks compares two descending-sorted rank lists position by
// position: -1 when a is the closer match (smaller rank at the first
// differing position), +1 when b is, 0 when they never differ.
func compareRanks(a, b []int) int {
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if b[i] < a[i] {
			return 1
		}
	}
	return 0
}

// NotFoundError reports a call to an undeclared function.
type NotFoundError struct{ Name string }

func (e *NotFoundError) Error() string { return "undeclared identifier '" + e.Name + "'" }

// NoOverloadError reports that no overload of Name accepts Args.
type NoOverloadError struct {
	Name string
	Args []types.Type
}

func (e *NoOverloadError) Error() string {
	return "no matching overload for '" + e.Name + "'" + argsString(e.Args)
}

// AmbiguousCallError reports that two or more overloads tie for best match.
type AmbiguousCallError struct {
	Name string
	Args []types.Type
}

func (e *AmbiguousCallError) Error() string {
	return "ambiguous call to '" + e.Name + "'" + argsString(e.Args)
}

func argsString(args []types.Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
