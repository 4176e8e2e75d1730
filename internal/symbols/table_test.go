package symbols

import (
	"testing"

	"regionck/internal/ast"
	"regionck/internal/source"
)

func TestTableScopesAndResolutions(t *testing.T) {
	table := NewTable(Hints{}, nil)
	fn := table.Scopes.New(ScopeFunction, NoScopeID, source.Span{})
	block := table.Scopes.New(ScopeBlock, fn, source.Span{})

	table.SetScope(ast.NodeID(7), block)
	if got, ok := table.ScopeOf(ast.NodeID(7)); !ok || got != block {
		t.Fatalf("ScopeOf = %v,%v want %v", got, ok, block)
	}
	if _, ok := table.ScopeOf(ast.NodeID(8)); ok {
		t.Fatalf("unrecorded node must not have a scope")
	}

	sym := table.Symbols.New(&Symbol{Kind: SymbolFunction, Name: table.Strings.Intern("f")})
	table.Resolve(ast.ExprID(3), sym)
	if got, ok := table.Resolution(ast.ExprID(3)); !ok || got != sym {
		t.Fatalf("Resolution = %v,%v want %v", got, ok, sym)
	}

	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestScopesEncloses(t *testing.T) {
	scopes := NewScopes(0)
	fn := scopes.New(ScopeFunction, NoScopeID, source.Span{})
	block := scopes.New(ScopeBlock, fn, source.Span{})
	stmt := scopes.New(ScopeStmt, block, source.Span{})
	other := scopes.New(ScopeBlock, fn, source.Span{})

	if !scopes.Encloses(fn, stmt) || !scopes.Encloses(block, stmt) || !scopes.Encloses(stmt, stmt) {
		t.Fatalf("ancestors must enclose their descendants")
	}
	if scopes.Encloses(stmt, block) || scopes.Encloses(other, stmt) {
		t.Fatalf("unrelated or inner scopes must not enclose")
	}
}

func TestValidateRejectsUpvarCycle(t *testing.T) {
	table := NewTable(Hints{}, nil)
	a := table.Symbols.New(&Symbol{Kind: SymbolUpvar})
	b := table.Symbols.New(&Symbol{Kind: SymbolUpvar, Captured: a})
	table.Symbols.Get(a).Captured = b

	if err := table.Validate(); err == nil {
		t.Fatalf("expected validation error for upvar cycle")
	}
}

func TestValidateRequiresBindingForLocals(t *testing.T) {
	table := NewTable(Hints{}, nil)
	table.Symbols.New(&Symbol{Kind: SymbolLocal})
	if err := table.Validate(); err == nil {
		t.Fatalf("expected validation error for local without binding")
	}
}
