package sema

import (
	"context"
	"errors"
	"fmt"

	"regionck/internal/ast"
	"regionck/internal/diag"
	"regionck/internal/regions"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

// ErrFunctionAborted is returned by every entry point once a fatal region
// error has been reported for the function.
var ErrFunctionAborted = errors.New("function check already aborted")

// Options configure the checking context of one function body.
type Options struct {
	Builder   *ast.Builder
	Symbols   *symbols.Table
	Types     *types.Interner
	ExprTypes map[ast.ExprID]types.TypeID
	// SelfRegion is the receiver region of a method body; leave it zero
	// for free functions.
	SelfRegion types.Region
	// Vars is shared by every function of a run. A private allocator is
	// created when nil.
	Vars     *regions.VarAllocator
	Reporter diag.Reporter
	Regions  regions.Options
}

// FnCtxt is the function context the region operations run against.
type FnCtxt struct {
	builder   *ast.Builder
	symbols   *symbols.Table
	types     *types.Interner
	exprTypes map[ast.ExprID]types.TypeID
	self      types.Region
	vars      *regions.VarAllocator
	reporter  diag.Reporter
	resolver  *regions.Resolver
	aborted   bool
}

var _ regions.FunctionContext = (*FnCtxt)(nil)

// NewFnCtxt validates opts and builds a context.
func NewFnCtxt(opts Options) (*FnCtxt, error) {
	if opts.Builder == nil || opts.Symbols == nil || opts.Types == nil {
		return nil, fmt.Errorf("sema: builder, symbols and types are required")
	}
	if opts.Vars == nil {
		opts.Vars = regions.NewVarAllocator()
	}
	if opts.ExprTypes == nil {
		opts.ExprTypes = make(map[ast.ExprID]types.TypeID)
	}
	fcx := &FnCtxt{
		builder:   opts.Builder,
		symbols:   opts.Symbols,
		types:     opts.Types,
		exprTypes: opts.ExprTypes,
		self:      opts.SelfRegion,
		vars:      opts.Vars,
		reporter:  opts.Reporter,
	}
	fcx.resolver = regions.NewResolver(fcx, opts.Regions)
	return fcx, nil
}

func (fcx *FnCtxt) Types() *types.Interner       { return fcx.types }
func (fcx *FnCtxt) Exprs() *ast.Exprs            { return fcx.builder.Exprs }
func (fcx *FnCtxt) Strings() *source.Interner    { return fcx.builder.Strings }
func (fcx *FnCtxt) FreshRegionVar() types.Region { return fcx.vars.Fresh() }

func (fcx *FnCtxt) LookupScope(node ast.NodeID) (symbols.ScopeID, bool) {
	return fcx.symbols.ScopeOf(node)
}

func (fcx *FnCtxt) LookupDef(expr ast.ExprID) (*symbols.Symbol, bool) {
	id, ok := fcx.symbols.Resolution(expr)
	if !ok {
		return nil, false
	}
	return fcx.LookupSymbol(id)
}

func (fcx *FnCtxt) LookupSymbol(id symbols.SymbolID) (*symbols.Symbol, bool) {
	sym := fcx.symbols.Symbols.Get(id)
	return sym, sym != nil
}

func (fcx *FnCtxt) BindingNode(id ast.BindingID) (ast.NodeID, bool) {
	b := fcx.builder.Bindings.Get(id)
	if b == nil {
		return ast.NoNodeID, false
	}
	return b.Node, true
}

func (fcx *FnCtxt) SelfRegion() (types.Region, bool) {
	return fcx.self, fcx.self.IsValid()
}

func (fcx *FnCtxt) ExprType(expr ast.ExprID) (types.TypeID, bool) {
	ty, ok := fcx.exprTypes[expr]
	return ty, ok && ty != types.NoTypeID
}

// Abort reports a fatal internal diagnostic and marks the function as
// abandoned.
func (fcx *FnCtxt) Abort(span source.Span, msg string) error {
	fcx.aborted = true
	diag.ReportFatal(fcx.reporter, diag.SemaRegionInternal, span, msg).Emit()
	return &regions.AbortError{Span: span, Msg: msg}
}

// Aborted reports whether a fatal error was raised for this function.
func (fcx *FnCtxt) Aborted() bool { return fcx.aborted }

// InstantiateImpl instantiates the bound regions declared by boundTys
// (an impl candidate's signature) with fresh variables in target.
func (fcx *FnCtxt) InstantiateImpl(ctx context.Context, span source.Span, boundTys []types.TypeID, target types.TypeID) (types.TypeID, error) {
	if fcx.aborted {
		return types.NoTypeID, ErrFunctionAborted
	}
	return regions.Instantiate(ctx, fcx, span, boundTys, target)
}

// RegionOfBorrow returns the region of `&expr`. Either the borrow itself
// or its operand may be passed.
func (fcx *FnCtxt) RegionOfBorrow(ctx context.Context, expr ast.ExprID) (types.Region, error) {
	if fcx.aborted {
		return types.Region{}, ErrFunctionAborted
	}
	if un, ok := fcx.builder.Exprs.Unary(expr); ok && (un.Op == ast.ExprUnaryRef || un.Op == ast.ExprUnaryRefMut) {
		expr = un.Operand
	}
	return fcx.resolver.RegionOf(ctx, expr)
}
