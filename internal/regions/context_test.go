package regions

import (
	"regionck/internal/ast"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

// testCtx is a minimal FunctionContext over hand-built tables.
type testCtx struct {
	b      *ast.Builder
	table  *symbols.Table
	in     *types.Interner
	vars   *VarAllocator
	exprTy map[ast.ExprID]types.TypeID
	self   types.Region
	aborts []string
}

func newTestCtx() *testCtx {
	strs := source.NewInterner()
	return &testCtx{
		b:     ast.NewBuilder(ast.Hints{}, strs),
		table: symbols.NewTable(symbols.Hints{}, strs),
		in:    types.NewInterner(),
		vars:  NewVarAllocator(),
		exprTy: make(map[ast.ExprID]types.TypeID),
	}
}

func (c *testCtx) Types() *types.Interner       { return c.in }
func (c *testCtx) Exprs() *ast.Exprs            { return c.b.Exprs }
func (c *testCtx) Strings() *source.Interner    { return c.b.Strings }
func (c *testCtx) FreshRegionVar() types.Region { return c.vars.Fresh() }

func (c *testCtx) LookupScope(node ast.NodeID) (symbols.ScopeID, bool) {
	return c.table.ScopeOf(node)
}

func (c *testCtx) LookupDef(expr ast.ExprID) (*symbols.Symbol, bool) {
	id, ok := c.table.Resolution(expr)
	if !ok {
		return nil, false
	}
	return c.LookupSymbol(id)
}

func (c *testCtx) LookupSymbol(id symbols.SymbolID) (*symbols.Symbol, bool) {
	sym := c.table.Symbols.Get(id)
	return sym, sym != nil
}

func (c *testCtx) BindingNode(id ast.BindingID) (ast.NodeID, bool) {
	b := c.b.Bindings.Get(id)
	if b == nil {
		return ast.NoNodeID, false
	}
	return b.Node, true
}

func (c *testCtx) SelfRegion() (types.Region, bool) { return c.self, c.self.IsValid() }

func (c *testCtx) ExprType(expr ast.ExprID) (types.TypeID, bool) {
	ty, ok := c.exprTy[expr]
	return ty, ok
}

func (c *testCtx) Abort(span source.Span, msg string) error {
	c.aborts = append(c.aborts, msg)
	return &AbortError{Span: span, Msg: msg}
}

// helpers

func (c *testCtx) named(name string) types.BoundRegion {
	return types.NamedBound(c.b.Intern(name))
}

func (c *testCtx) ref(r types.Region, elem types.TypeID) types.TypeID {
	return c.in.Intern(types.MakeReference(r, elem, false))
}

func (c *testCtx) scope(parent symbols.ScopeID) symbols.ScopeID {
	return c.table.Scopes.New(symbols.ScopeBlock, parent, source.Span{})
}

// local declares name of the given kind in scope and returns its symbol.
func (c *testCtx) local(name string, kind symbols.SymbolKind, scope symbols.ScopeID) symbols.SymbolID {
	bind := c.b.Bindings.New(ast.BindingLet, source.Span{}, c.b.Intern(name))
	c.table.SetScope(c.b.Bindings.Get(bind).Node, scope)
	return c.table.Symbols.New(&symbols.Symbol{Name: c.b.Intern(name), Kind: kind, Binding: bind})
}

// ident creates a path to sym in scope, typed ty (NoTypeID leaves it untyped).
func (c *testCtx) ident(sym symbols.SymbolID, scope symbols.ScopeID, ty types.TypeID) ast.ExprID {
	name := c.table.Symbols.Get(sym).Name
	id := c.b.Exprs.NewIdent(source.Span{}, name)
	c.table.Resolve(id, sym)
	c.place(id, scope, ty)
	return id
}

func (c *testCtx) place(id ast.ExprID, scope symbols.ScopeID, ty types.TypeID) ast.ExprID {
	c.table.SetScope(c.b.Exprs.Node(id), scope)
	if ty != types.NoTypeID {
		c.exprTy[id] = ty
	}
	return id
}
