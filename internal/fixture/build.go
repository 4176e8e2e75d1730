package fixture

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"regionck/internal/ast"
	"regionck/internal/diag"
	"regionck/internal/source"
	"regionck/internal/symbols"
	"regionck/internal/types"
)

// maxImplicitScopes bounds the scope chain built when a function does not
// list its scopes explicitly.
const maxImplicitScopes = 4096

// Scenario is a loaded scenario file. Each scenario owns its interners;
// nothing in it is shared with other files.
type Scenario struct {
	File      source.FileID
	Path      string
	Types     *types.Interner
	Strings   *source.Interner
	Functions []*Function
}

// Function is the checked state of one function body: its expression
// tree, symbol table, expression types and the cases to run against it.
type Function struct {
	Name       string
	Span       source.Span
	Builder    *ast.Builder
	Symbols    *symbols.Table
	ExprTypes  map[ast.ExprID]types.TypeID
	SelfRegion types.Region

	Borrows        []BorrowCase
	Instantiations []InstantiateCase
}

// BorrowCase asks for the region of `&Expr`.
type BorrowCase struct {
	Text      string
	Span      source.Span
	Expr      ast.ExprID
	Want      types.Region
	WantAbort bool
}

// InstantiateCase instantiates the bound regions of Bound inside Target.
type InstantiateCase struct {
	Text      string
	Span      source.Span
	Bound     []types.TypeID
	Target    types.TypeID
	Want      types.TypeID
	WantAbort bool
}

// Cases returns the number of cases across all functions.
func (s *Scenario) Cases() int {
	n := 0
	for _, fn := range s.Functions {
		n += len(fn.Borrows) + len(fn.Instantiations)
	}
	return n
}

// Printer renders types and regions with the scenario's names.
func (s *Scenario) Printer() types.Printer {
	return types.Printer{Types: s.Types, Strings: s.Strings}
}

// loader forwards diagnostics and counts errors for one file.
type loader struct {
	file   *source.File
	next   diag.Reporter
	env     *typeEnv
	headers []tableHeader
	errors  int
}

func (l *loader) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev >= diag.SevError {
		l.errors++
	}
	if l.next != nil {
		l.next.Report(code, sev, primary, msg, notes)
	}
}

// Load decodes and builds the scenario file id. Malformed cases are
// reported to r and left out; ok is false when anything was reported.
func Load(fs *source.FileSet, id source.FileID, r diag.Reporter) (*Scenario, bool) {
	f := fs.Get(id)
	if f == nil {
		return nil, false
	}
	strs := source.NewInterner()
	in := types.NewInterner()
	l := &loader{file: f, next: r, env: newTypeEnv(in, strs), headers: scanHeaders(f.Content)}

	var raw scenarioFile
	meta, err := toml.Decode(string(f.Content), &raw)
	if err != nil {
		l.syntaxError(err)
		return nil, false
	}
	for _, key := range meta.Undecoded() {
		diag.ReportError(l, diag.FixSyntax, l.span(0, 0), fmt.Sprintf("unknown key %q", key.String())).Emit()
	}

	sc := &Scenario{File: id, Path: f.Path, Types: in, Strings: strs}
	l.declareStructs(raw.Structs)
	l.declareAliases(raw.Aliases)

	seen := make(map[string]source.Span, len(raw.Functions))
	for i := range raw.Functions {
		decl := &raw.Functions[i]
		fn := l.buildFunction(decl, l.table(l.whole(), "function", i))
		if prev, dup := seen[decl.Name]; dup {
			diag.ReportError(l, diag.FixDuplicateFunc, fn.Span, fmt.Sprintf("function %q declared twice", decl.Name)).
				WithNote(prev, "previous declaration").
				Emit()
			continue
		}
		seen[decl.Name] = fn.Span
		sc.Functions = append(sc.Functions, fn)
	}
	return sc, l.errors == 0
}

func (l *loader) syntaxError(err error) {
	sp := l.span(0, 0)
	msg := err.Error()
	var perr toml.ParseError
	if errors.As(err, &perr) {
		start := min(max(perr.Position.Start, 0), len(l.file.Content))
		end := min(start+max(perr.Position.Len, 1), len(l.file.Content))
		sp = l.span(start, end)
		msg = perr.Message
	}
	diag.ReportError(l, diag.FixSyntax, sp, msg).Emit()
}

func (l *loader) span(start, end int) source.Span {
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("scenario offset overflow: %w", err))
	}
	e, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("scenario offset overflow: %w", err))
	}
	return source.Span{File: l.file.ID, Start: s, End: e}
}

func (l *loader) declareStructs(decls []structDecl) {
	env := l.env
	handles := make([]uint32, len(decls))
	for i := range decls {
		d := &decls[i]
		ext := l.table(l.whole(), "struct", i)
		sp := l.locate(ext, "name", d.Name)
		if _, dup := env.structs[d.Name]; dup {
			diag.ReportError(l, diag.FixDuplicateLocal, sp, fmt.Sprintf("struct %q declared twice", d.Name)).Emit()
			continue
		}
		params := make([]types.BoundRegion, 0, len(d.Regions))
		regionSpans := l.locateList(ext, "regions", d.Regions)
		for j, text := range d.Regions {
			p := newParser(text, regionSpans[j], env, l)
			br, ok := p.parseBoundName()
			if !ok || !p.finish(diag.FixBadBoundName) {
				continue
			}
			params = append(params, br)
		}
		handles[i] = env.types.DeclareStruct(env.strings.Intern(d.Name), params, nil)
		env.structs[d.Name] = handles[i]
	}
	// fields are parsed once every struct name is known
	for i := range decls {
		if handles[i] == 0 {
			continue
		}
		ext := l.table(l.whole(), "struct", i)
		fields := make([]types.StructField, 0, len(decls[i].Fields))
		for j, f := range decls[i].Fields {
			fext := l.table(ext, "struct.field", j)
			ty, ok := env.ParseType(f.Type, l.locate(fext, "type", f.Type), l)
			if !ok {
				continue
			}
			fields = append(fields, types.StructField{Name: env.strings.Intern(f.Name), Type: ty})
		}
		if decl, ok := env.types.StructDecl(handles[i]); ok {
			decl.Fields = fields
		}
	}
}

func (l *loader) declareAliases(decls []aliasDecl) {
	env := l.env
	for i, d := range decls {
		ext := l.table(l.whole(), "alias", i)
		sp := l.locate(ext, "name", d.Name)
		if _, dup := env.aliases[d.Name]; dup {
			diag.ReportError(l, diag.FixDuplicateLocal, sp, fmt.Sprintf("alias %q declared twice", d.Name)).Emit()
			continue
		}
		target, ok := env.ParseType(d.Type, l.locate(ext, "type", d.Type), l)
		if !ok {
			continue
		}
		env.aliases[d.Name] = env.types.RegisterAlias(env.strings.Intern(d.Name), target)
	}
}

// parseLocalKind accepts the symbol kind names plus "arg" for parameters.
func parseLocalKind(s string) (symbols.SymbolKind, bool) {
	switch s {
	case "":
		return symbols.SymbolLocal, true
	case "arg":
		return symbols.SymbolParam, true
	}
	return symbols.ParseSymbolKind(s)
}

func bindingKind(k symbols.SymbolKind) ast.BindingKind {
	switch k {
	case symbols.SymbolParam:
		return ast.BindingParam
	case symbols.SymbolBinding:
		return ast.BindingPattern
	default:
		return ast.BindingLet
	}
}

type localInfo struct {
	sym symbols.SymbolID
	ty  types.TypeID
}

// funcBuilder collects the state of the function being built.
type funcBuilder struct {
	*loader
	ext    extent
	fn     *Function
	scopes uint32
	locals map[string]localInfo
}

func (l *loader) buildFunction(d *functionDecl, ext extent) *Function {
	strs := l.env.strings
	fn := &Function{
		Name:      d.Name,
		Span:      l.locate(ext, "name", d.Name),
		Builder:   ast.NewBuilder(ast.Hints{}, strs),
		Symbols:   symbols.NewTable(symbols.Hints{}, strs),
		ExprTypes: make(map[ast.ExprID]types.TypeID),
	}
	fb := &funcBuilder{loader: l, ext: ext, fn: fn, locals: make(map[string]localInfo, len(d.Locals))}
	fb.buildScopes(d)

	if d.SelfRegion != "" {
		if r, ok := l.env.ParseRegion(d.SelfRegion, l.locate(ext, "self_region", d.SelfRegion), l); ok {
			fn.SelfRegion = r
		}
	}
	fb.declareLocals(d.Locals)
	for i, b := range d.Borrows {
		fb.addBorrow(b, fb.table(ext, "function.borrow", i))
	}
	for i, inst := range d.Instantiation {
		fb.addInstantiate(inst, fb.table(ext, "function.instantiate", i))
	}
	return fn
}

func (fb *funcBuilder) buildScopes(d *functionDecl) {
	scopes := fb.fn.Symbols.Scopes
	if len(d.Scopes) > 0 {
		for i, parent := range d.Scopes {
			id, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				panic(fmt.Errorf("scope count overflow: %w", err))
			}
			kind := symbols.ScopeBlock
			if parent == 0 {
				kind = symbols.ScopeFunction
			} else if parent >= id {
				diag.ReportError(fb, diag.FixUnknownScope, fb.fn.Span,
					fmt.Sprintf("scope %d: parent %d must be declared before it", id, parent)).Emit()
				parent = 0
			}
			scopes.New(kind, symbols.ScopeID(parent), fb.fn.Span)
		}
		n, err := safecast.Conv[uint32](scopes.Len())
		if err != nil {
			panic(fmt.Errorf("scope count overflow: %w", err))
		}
		fb.scopes = n
		return
	}

	var highest uint32
	for _, local := range d.Locals {
		highest = max(highest, local.Scope)
	}
	for _, b := range d.Borrows {
		highest = max(highest, b.Scope)
	}
	highest = min(highest, maxImplicitScopes)
	parent := symbols.NoScopeID
	for i := range highest {
		kind := symbols.ScopeBlock
		if i == 0 {
			kind = symbols.ScopeFunction
		}
		parent = scopes.New(kind, parent, fb.fn.Span)
	}
	fb.scopes = highest
}

func (fb *funcBuilder) checkScope(n uint32, sp source.Span) bool {
	if n == 0 || n > fb.scopes {
		diag.ReportError(fb, diag.FixUnknownScope, sp, fmt.Sprintf("unknown scope %d in function %q", n, fb.fn.Name)).Emit()
		return false
	}
	return true
}

type pendingCapture struct {
	sym    symbols.SymbolID
	target string
	span   source.Span
}

func (fb *funcBuilder) declareLocals(decls []localDecl) {
	env := fb.env
	table := fb.fn.Symbols
	var captures []pendingCapture
	for i, d := range decls {
		ext := fb.table(fb.ext, "function.local", i)
		sp := fb.locate(ext, "name", d.Name)
		kind, ok := parseLocalKind(d.Kind)
		if !ok {
			diag.ReportError(fb, diag.FixBadLocalKind, fb.locate(ext, "kind", d.Kind), fmt.Sprintf("unknown local kind %q", d.Kind)).Emit()
			continue
		}
		if prev, dup := fb.locals[d.Name]; dup {
			diag.ReportError(fb, diag.FixDuplicateLocal, sp, fmt.Sprintf("local %q declared twice", d.Name)).
				WithNote(table.Symbols.Get(prev.sym).Span, "previous declaration").
				Emit()
			continue
		}
		ty := types.NoTypeID
		if d.Type != "" {
			if ty, ok = env.ParseType(d.Type, fb.locate(ext, "type", d.Type), fb); !ok {
				continue
			}
		}

		name := env.strings.Intern(d.Name)
		sym := symbols.Symbol{Name: name, Kind: kind, Span: sp}
		if kind.IsLocalStorage() {
			if !fb.checkScope(d.Scope, sp) {
				continue
			}
			sym.Binding = fb.fn.Builder.Bindings.New(bindingKind(kind), sp, name)
			table.SetScope(fb.fn.Builder.Bindings.Get(sym.Binding).Node, symbols.ScopeID(d.Scope))
		}
		id := table.Symbols.New(&sym)
		fb.locals[d.Name] = localInfo{sym: id, ty: ty}

		switch {
		case kind == symbols.SymbolUpvar && d.Captures == "":
			diag.ReportError(fb, diag.FixInvalidTable, sp, fmt.Sprintf("upvar %q does not name a captured local", d.Name)).Emit()
		case kind == symbols.SymbolUpvar:
			captures = append(captures, pendingCapture{sym: id, target: d.Captures, span: fb.locate(ext, "captures", d.Captures)})
		case d.Captures != "":
			diag.ReportError(fb, diag.FixInvalidTable, sp, fmt.Sprintf("only upvars capture; %q is a %s", d.Name, kind)).Emit()
		}
	}

	for _, c := range captures {
		target, ok := fb.locals[c.target]
		if !ok {
			diag.ReportError(fb, diag.FixUnknownLocal, c.span, fmt.Sprintf("upvar captures unknown local %q", c.target)).Emit()
			continue
		}
		table.Symbols.Get(c.sym).Captured = target.sym
	}
	// upvars without a declared type see the captured local's type
	for name, info := range fb.locals {
		if info.ty != types.NoTypeID {
			continue
		}
		if ty := fb.capturedType(info.sym, 0); ty != types.NoTypeID {
			fb.locals[name] = localInfo{sym: info.sym, ty: ty}
		}
	}
}

func (fb *funcBuilder) capturedType(id symbols.SymbolID, depth int) types.TypeID {
	sym := fb.fn.Symbols.Symbols.Get(id)
	if sym == nil || sym.Kind != symbols.SymbolUpvar || depth > len(fb.locals) {
		return types.NoTypeID
	}
	for _, info := range fb.locals {
		if info.sym != sym.Captured {
			continue
		}
		if info.ty != types.NoTypeID {
			return info.ty
		}
		return fb.capturedType(info.sym, depth+1)
	}
	return types.NoTypeID
}

// expectation validates the expect/expect_abort pair of a case.
func (fb *funcBuilder) expectation(expect string, abort bool, sp source.Span) bool {
	switch {
	case expect != "" && abort:
		diag.ReportError(fb, diag.FixSyntax, sp, "expect and expect_abort are mutually exclusive").Emit()
		return false
	case expect == "" && !abort:
		diag.ReportError(fb, diag.FixSyntax, sp, "case has neither expect nor expect_abort").Emit()
		return false
	}
	return true
}

func (fb *funcBuilder) addBorrow(d borrowDecl, ext extent) {
	fn := fb.fn
	sp := fb.locate(ext, "expr", d.Expr)
	if !fb.checkScope(d.Scope, sp) || !fb.expectation(d.Expect, d.ExpectAbort, sp) {
		return
	}
	root, created, ok := parseExprSnippet(d.Expr, sp, fb.env, fn.Builder, fb)
	if !ok || !fb.resolveIdents(created) {
		return
	}
	scope := symbols.ScopeID(d.Scope)
	for _, id := range created {
		fn.Symbols.SetScope(fn.Builder.Exprs.Node(id), scope)
	}
	fb.typeExprs(created, scope)

	c := BorrowCase{Text: d.Expr, Span: sp, Expr: root, WantAbort: d.ExpectAbort}
	if !d.ExpectAbort {
		if c.Want, ok = fb.env.ParseRegion(d.Expect, fb.locate(ext, "expect", d.Expect), fb); !ok {
			return
		}
	}
	fn.Borrows = append(fn.Borrows, c)
}

func (fb *funcBuilder) resolveIdents(created []ast.ExprID) bool {
	exprs := fb.fn.Builder.Exprs
	ok := true
	for _, id := range created {
		ident, isIdent := exprs.Ident(id)
		if !isIdent {
			continue
		}
		name := fb.env.strings.MustLookup(ident.Name)
		local, found := fb.locals[name]
		if !found {
			diag.ReportError(fb, diag.FixUnknownLocal, exprs.Get(id).Span,
				fmt.Sprintf("unknown local %q in function %q", name, fb.fn.Name)).Emit()
			ok = false
			continue
		}
		fb.fn.Symbols.Resolve(id, local.sym)
	}
	return ok
}

func (fb *funcBuilder) addInstantiate(d instantiateDecl, ext extent) {
	env := fb.env
	boundSpans := fb.locateList(ext, "bound", d.Bound)
	sp := fb.locate(ext, "target", d.Target)
	if !fb.expectation(d.Expect, d.ExpectAbort, sp) {
		return
	}
	c := InstantiateCase{Text: d.Target, Span: sp, WantAbort: d.ExpectAbort}
	for i, text := range d.Bound {
		ty, ok := env.ParseType(text, boundSpans[i], fb)
		if !ok {
			return
		}
		c.Bound = append(c.Bound, ty)
	}
	var ok bool
	if c.Target, ok = env.ParseType(d.Target, sp, fb); !ok {
		return
	}
	if !d.ExpectAbort {
		if c.Want, ok = env.ParseType(d.Expect, fb.locate(ext, "expect", d.Expect), fb); !ok {
			return
		}
	}
	fb.fn.Instantiations = append(fb.fn.Instantiations, c)
}
