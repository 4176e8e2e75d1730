package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
)

// Validate walks internal arenas checking structural invariants. Returns nil if
// everything is consistent; otherwise aggregates all detected issues.
func (t *Table) Validate() error {
	var errs []error

	for idx := 1; idx < len(t.Scopes.data); idx++ {
		scopeID, err := toScopeID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		scope := t.Scopes.data[idx]
		if scope.Kind == ScopeInvalid {
			errs = append(errs, fmt.Errorf("scope %d has invalid kind", scopeID))
		}
		if scope.Parent.IsValid() {
			if int(scope.Parent) >= len(t.Scopes.data) || scope.Parent == scopeID {
				errs = append(errs, fmt.Errorf("scope %d has invalid parent %d", scopeID, scope.Parent))
			}
		}
	}

	for idx := 1; idx < len(t.Symbols.data); idx++ {
		symID, err := toSymbolID(idx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sym := t.Symbols.data[idx]
		switch {
		case sym.Kind == SymbolInvalid:
			errs = append(errs, fmt.Errorf("symbol %d has invalid kind", symID))
		case sym.Kind.IsLocalStorage() && !sym.Binding.IsValid():
			errs = append(errs, fmt.Errorf("symbol %d (%s) has no binding node", symID, sym.Kind))
		case sym.Kind == SymbolUpvar:
			if err := t.checkUpvarChain(symID); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for expr, sym := range t.resolutions {
		if t.Symbols.Get(sym) == nil {
			errs = append(errs, fmt.Errorf("expr %d resolves to unknown symbol %d", expr, sym))
		}
	}
	for node, scope := range t.nodeScopes {
		if t.Scopes.Get(scope) == nil {
			errs = append(errs, fmt.Errorf("node %d recorded in unknown scope %d", node, scope))
		}
	}

	return errors.Join(errs...)
}

// checkUpvarChain makes sure an upvar eventually names a non-upvar symbol.
func (t *Table) checkUpvarChain(start SymbolID) error {
	seen := map[SymbolID]bool{}
	for id := start; ; {
		if seen[id] {
			return fmt.Errorf("upvar %d captures itself", start)
		}
		seen[id] = true
		sym := t.Symbols.Get(id)
		if sym == nil {
			return fmt.Errorf("upvar %d captures unknown symbol %d", start, id)
		}
		if sym.Kind != SymbolUpvar {
			return nil
		}
		id = sym.Captured
	}
}

func toScopeID(idx int) (ScopeID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope index overflow: %w", err)
	}
	return ScopeID(value), nil
}

func toSymbolID(idx int) (SymbolID, error) {
	value, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol index overflow: %w", err)
	}
	return SymbolID(value), nil
}
