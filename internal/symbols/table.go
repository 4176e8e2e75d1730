package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"regionck/internal/ast"
	"regionck/internal/source"
)

// Hints provide optional capacity suggestions for the table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table holds the name-resolution and scope results for one function body:
// which definition every path expression resolves to, and which lexical
// scope encloses every node.
type Table struct {
	Scopes      *Scopes
	Symbols     *Symbols
	Strings     *source.Interner
	resolutions map[ast.ExprID]SymbolID
	nodeScopes  map[ast.NodeID]ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:      NewScopes(scopeCap),
		Symbols:     NewSymbols(symCap),
		Strings:     strings,
		resolutions: make(map[ast.ExprID]SymbolID),
		nodeScopes:  make(map[ast.NodeID]ScopeID),
	}
}

// Resolve records that path expression expr refers to sym.
func (t *Table) Resolve(expr ast.ExprID, sym SymbolID) {
	if !expr.IsValid() || !sym.IsValid() {
		return
	}
	t.resolutions[expr] = sym
}

// Resolution returns the definition recorded for expr.
func (t *Table) Resolution(expr ast.ExprID) (SymbolID, bool) {
	sym, ok := t.resolutions[expr]
	return sym, ok
}

// SetScope records the innermost scope enclosing node.
func (t *Table) SetScope(node ast.NodeID, scope ScopeID) {
	if !node.IsValid() || !scope.IsValid() {
		return
	}
	t.nodeScopes[node] = scope
}

// ScopeOf returns the innermost scope recorded for node.
func (t *Table) ScopeOf(node ast.NodeID) (ScopeID, bool) {
	scope, ok := t.nodeScopes[node]
	return scope, ok
}

// Symbols stores declared symbols in a compact arena.
type Symbols struct {
	data []Symbol
}

// NewSymbols creates a symbol arena with optional capacity hint.
func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{
		data: make([]Symbol, 1, capacity+1), // index 0 reserved for NoSymbolID
	}
}

// New allocates a symbol in the arena and returns its ID.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	value, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("symbols arena overflow: %w", err))
	}
	id := SymbolID(value)
	s.data = append(s.data, *sym)
	return id
}

// Get returns a symbol pointer or nil for invalid ID.
func (s *Symbols) Get(id SymbolID) *Symbol {
	if !id.IsValid() || int(id) >= len(s.data) {
		return nil
	}
	return &s.data[id]
}

// Len reports number of stored symbols excluding sentinel.
func (s *Symbols) Len() int { return len(s.data) - 1 }
