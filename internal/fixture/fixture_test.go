package fixture

import (
	"path/filepath"
	"testing"

	"regionck/internal/ast"
	"regionck/internal/diag"
	"regionck/internal/source"
	"regionck/internal/testkit"
	"regionck/internal/types"
)

func loadTestdata(t *testing.T, name string) (*Scenario, *diag.Bag, bool) {
	t.Helper()
	fs := source.NewFileSet()
	id, err := fs.Load(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	bag := diag.NewBag(100)
	sc, ok := Load(fs, id, diag.BagReporter{Bag: bag})
	return sc, bag, ok
}

func findFunction(t *testing.T, sc *Scenario, name string) *Function {
	t.Helper()
	for _, fn := range sc.Functions {
		if fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not loaded", name)
	return nil
}

func TestLoadBasicScenario(t *testing.T) {
	sc, bag, ok := loadTestdata(t, "basic.toml")
	if !ok {
		t.Fatalf("basic.toml reported diagnostics: %v", bag.Items())
	}
	if len(sc.Functions) != 2 {
		t.Fatalf("functions = %d, want 2", len(sc.Functions))
	}
	places := findFunction(t, sc, "places")
	if len(places.Borrows) != 13 {
		t.Fatalf("borrows = %d, want 13", len(places.Borrows))
	}
	sigs := findFunction(t, sc, "signatures")
	if len(sigs.Instantiations) != 5 {
		t.Fatalf("instantiations = %d, want 5", len(sigs.Instantiations))
	}
	if sc.Cases() != 18 {
		t.Fatalf("Cases() = %d, want 18", sc.Cases())
	}

	p := sc.Printer()
	if got := p.RegionString(places.SelfRegion); got != "'free(1,'s)" {
		t.Fatalf("self region = %s", got)
	}
	c := places.Borrows[1]
	if c.Text != "&arr[i]" || p.RegionString(c.Want) != "'a" {
		t.Fatalf("unexpected case %q want %s", c.Text, p.RegionString(c.Want))
	}
	if !places.Borrows[12].WantAbort {
		t.Fatalf("last borrow case must expect an abort")
	}
}

func TestLoadTypesExpressions(t *testing.T) {
	sc, _, _ := loadTestdata(t, "basic.toml")
	fn := findFunction(t, sc, "places")
	p := sc.Printer()
	exprs := fn.Builder.Exprs

	// &arr[i]: the borrow is typed with the scope it appears in
	root := fn.Borrows[1].Expr
	if got := p.TypeString(fn.ExprTypes[root]); got != "&'scope(3) int" {
		t.Fatalf("type of &arr[i] = %q", got)
	}
	un, ok := exprs.Unary(root)
	if !ok || un.Op != ast.ExprUnaryRef {
		t.Fatalf("root of &arr[i] is not a borrow")
	}
	idx, ok := exprs.Index(un.Operand)
	if !ok {
		t.Fatalf("operand of &arr[i] is not an index")
	}
	if got := p.TypeString(fn.ExprTypes[idx.Target]); got != "Ints = &'a [int]" {
		t.Fatalf("type of arr = %q", got)
	}

	// &*h.n reads the field through the struct's region argument
	deref, _ := exprs.Unary(fn.Borrows[6].Expr)
	inner, _ := exprs.Unary(deref.Operand)
	if got := p.TypeString(fn.ExprTypes[inner.Operand]); got != "&'static int" {
		t.Fatalf("type of h.n = %q", got)
	}

	// the untyped local stays untyped
	last, _ := exprs.Unary(fn.Borrows[12].Expr)
	index, _ := exprs.Index(last.Operand)
	if _, ok := fn.ExprTypes[index.Target]; ok {
		t.Fatalf("u must have no recorded type")
	}

	// the upvar inherits the captured local's type
	upvar, _ := exprs.Unary(fn.Borrows[10].Expr)
	if got := fn.ExprTypes[upvar.Operand]; got != sc.Types.Builtins().Int {
		t.Fatalf("type of c = %s", p.TypeString(got))
	}
}

func TestLoadRecordsScopesAndResolutions(t *testing.T) {
	sc, _, _ := loadTestdata(t, "basic.toml")
	fn := findFunction(t, sc, "places")
	if fn.Symbols.Scopes.Len() != 4 {
		t.Fatalf("scopes = %d, want 4", fn.Symbols.Scopes.Len())
	}
	if !fn.Symbols.Scopes.Encloses(1, 4) {
		t.Fatalf("implicit scopes must form a chain")
	}
	c := fn.Borrows[0] // &x at scope 3
	un, _ := fn.Builder.Exprs.Unary(c.Expr)
	scope, ok := fn.Symbols.ScopeOf(fn.Builder.Exprs.Node(un.Operand))
	if !ok || scope != 3 {
		t.Fatalf("scope of x use = %d, %v", scope, ok)
	}
	sym, ok := fn.Symbols.Resolution(un.Operand)
	if !ok {
		t.Fatalf("x is unresolved")
	}
	def := fn.Symbols.Symbols.Get(sym)
	node := fn.Builder.Bindings.Get(def.Binding).Node
	if declScope, _ := fn.Symbols.ScopeOf(node); declScope != 2 {
		t.Fatalf("x declared in scope %d, want 2", declScope)
	}
}

func TestLoadReportsBrokenCases(t *testing.T) {
	sc, bag, ok := loadTestdata(t, "broken.toml")
	if ok {
		t.Fatalf("broken.toml must not load cleanly")
	}
	if sc == nil || len(sc.Functions) != 1 {
		t.Fatalf("the function itself must still load")
	}
	if n := sc.Cases(); n != 0 {
		t.Fatalf("cases = %d, want 0", n)
	}
	got := make(map[diag.Code]bool)
	for _, d := range bag.Items() {
		got[d.Code] = true
	}
	for _, code := range []diag.Code{
		diag.FixDuplicateLocal,
		diag.FixBadLocalKind,
		diag.FixUnknownLocal,
		diag.FixUnknownScope,
		diag.FixBadExpr,
		diag.FixUnknownStruct,
		diag.FixSyntax,
	} {
		if !got[code] {
			t.Errorf("missing %s", code.ID())
		}
	}
}

func TestLoadPointsAtValues(t *testing.T) {
	fs := source.NewFileSet()
	src := "[[function]]\nname = \"f\"\n  [[function.local]]\n  name = \"x\"\n  type = \"&'a Nope\"\n"
	id := fs.Add("inline.toml", []byte(src))
	bag := diag.NewBag(10)
	if _, ok := Load(fs, id, diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("unknown struct must fail the load")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.FixUnknownStruct {
		t.Fatalf("diagnostics = %+v", items)
	}
	start, _, _ := fs.Resolve(items[0].Primary)
	if start != (source.LineCol{Line: 5, Col: 15}) {
		t.Fatalf("diagnostic at %+v, want 5:15", start)
	}
}

func TestLoadPointsAtRepeatedValues(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code diag.Code
		want []source.LineCol
	}{
		{
			name: "local named like its function",
			src:  "[[function]]\nname = \"y\"\nscopes = [0]\n  [[function.local]]\n  scope = 9\n  name = \"y\"\n",
			code: diag.FixUnknownScope,
			want: []source.LineCol{{Line: 6, Col: 11}},
		},
		{
			name: "same field type twice",
			src:  "[[struct]]\nname = \"S\"\n  [[struct.field]]\n  name = \"a\"\n  type = \"Nope\"\n  [[struct.field]]\n  type = \"Nope\"\n  name = \"b\"\n",
			code: diag.FixUnknownStruct,
			want: []source.LineCol{{Line: 5, Col: 11}, {Line: 7, Col: 11}},
		},
		{
			name: "repeated bound entries",
			src:  "[[function]]\nname = \"f\"\n  [[function.instantiate]]\n  target = \"Nope\"\n  bound = [\"Nope\", \"Nope\"]\n  expect_abort = true\n",
			code: diag.FixUnknownStruct,
			want: []source.LineCol{{Line: 5, Col: 13}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fs := source.NewFileSet()
			id := fs.Add("inline.toml", []byte(tc.src))
			bag := diag.NewBag(10)
			if _, ok := Load(fs, id, diag.BagReporter{Bag: bag}); ok {
				t.Fatalf("load must fail")
			}
			items := bag.Items()
			if len(items) != len(tc.want) {
				t.Fatalf("diagnostics = %+v", items)
			}
			for i, d := range items {
				if d.Code != tc.code {
					t.Fatalf("diagnostic %d code = %s, want %s", i, d.Code.ID(), tc.code.ID())
				}
				start, _, _ := fs.Resolve(d.Primary)
				if start != tc.want[i] {
					t.Fatalf("diagnostic %d at %+v, want %+v", i, start, tc.want[i])
				}
			}
		})
	}
}

func TestLoadLocatesEachCase(t *testing.T) {
	fs := source.NewFileSet()
	src := "[[function]]\nname = \"f\"\n  [[function.local]]\n  name = \"x\"\n  scope = 1\n  type = \"int\"\n" +
		"  [[function.borrow]]\n  expr = \"&x\"\n  scope = 1\n  expect = \"'scope(1)\"\n" +
		"  [[function.borrow]]\n  expect = \"'scope(1)\"\n  expr = \"&x\"\n  scope = 1\n"
	id := fs.Add("cases.toml", []byte(src))
	bag := diag.NewBag(10)
	sc, ok := Load(fs, id, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("load failed: %+v", bag.Items())
	}
	borrows := sc.Functions[0].Borrows
	if len(borrows) != 2 {
		t.Fatalf("borrows = %d, want 2", len(borrows))
	}
	for i, line := range []uint32{8, 13} {
		start, _, _ := fs.Resolve(borrows[i].Span)
		if start.Line != line {
			t.Fatalf("borrow %d at line %d, want %d", i, start.Line, line)
		}
	}
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.Add("bad.toml", []byte("[[function]\nname = 1\n"))
	bag := diag.NewBag(10)
	sc, ok := Load(fs, id, diag.BagReporter{Bag: bag})
	if ok || sc != nil {
		t.Fatalf("malformed TOML must not load")
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.FixSyntax {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
}

func TestParseTypeNotation(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	env := newTypeEnv(in, strs)
	p := types.Printer{Types: in, Strings: strs}
	cases := map[string]string{
		"&'a mut [int]":               "&'a mut [int]",
		"& int":                       "&int",
		"fn(&int) -> &'b uint8":       "fn(&int) -> &'b uint8",
		"fn()":                        "fn()",
		"(int)":                       "int",
		"(int,)":                      "(int,)",
		"(bool, *string)":             "(bool, *string)",
		"[float64; 3]":                "[float64; 3]",
		"box own ()":                  "box own ()",
		"&'scope(4) !":                "&'scope(4) !",
		"&'free(2, 'x) int":           "&'free(2,'x) int",
		"&'?7 int":                    "&'?7 int",
		"&'self int":                  "&'self int",
		"(&'static int, fn(&'a int))": "(&'static int, fn(&'a int))",
	}
	for text, want := range cases {
		bag := diag.NewBag(4)
		ty, ok := env.ParseType(text, source.Span{}, diag.BagReporter{Bag: bag})
		if !ok {
			t.Fatalf("ParseType(%q) failed: %+v", text, bag.Items())
		}
		if got := p.TypeString(ty); got != want {
			t.Fatalf("ParseType(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestParseTypeErrors(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	env := newTypeEnv(in, strs)
	env.structs["Pair"] = in.DeclareStruct(strs.Intern("Pair"), []types.BoundRegion{types.NamedBound(strs.Intern("a"))}, nil)
	cases := map[string]diag.Code{
		"Nope":                   diag.FixUnknownStruct,
		"Pair":                   diag.FixBadType,
		"[int; x]":               diag.FixBadType,
		"&'?x int":               diag.FixBadRegion,
		"&'static":               diag.FixBadType,
		"int int":                diag.FixBadType,
		"&'free(1, 'static) int": diag.FixBadRegion,
	}
	for text, code := range cases {
		bag := diag.NewBag(4)
		if _, ok := env.ParseType(text, source.Span{}, diag.BagReporter{Bag: bag}); ok {
			t.Fatalf("ParseType(%q) must fail", text)
		}
		if bag.Len() != 1 || bag.Items()[0].Code != code {
			t.Fatalf("ParseType(%q) diagnostics = %+v, want one %s", text, bag.Items(), code.ID())
		}
	}
}

// grouped renders binary operators fully parenthesised.
func grouped(b *ast.Builder, id ast.ExprID) string {
	if bin, ok := b.Exprs.Binary(id); ok {
		return "(" + grouped(b, bin.Left) + " " + bin.Op.String() + " " + grouped(b, bin.Right) + ")"
	}
	return b.ExprString(id)
}

func TestParseExprPrecedence(t *testing.T) {
	in := types.NewInterner()
	strs := source.NewInterner()
	env := newTypeEnv(in, strs)
	b := ast.NewBuilder(ast.Hints{}, strs)
	cases := map[string]string{
		"a + b * c":    "(a + (b * c))",
		"a - b - c":    "((a - b) - c)",
		"a == b + 1":   "(a == (b + 1))",
		"a * (b + c)":  "(a * (b + c))",
		"&mut *p.f[i]": "&mut *p.f[i]",
		"-f(x, y).z":   "-f(x, y).z",
		"!ok":          "!ok",
		"t.0":          "t.0",
	}
	for text, want := range cases {
		bag := diag.NewBag(4)
		root, created, ok := parseExprSnippet(text, source.Span{}, env, b, diag.BagReporter{Bag: bag})
		if !ok {
			t.Fatalf("parse %q: %+v", text, bag.Items())
		}
		if created[len(created)-1] != root {
			t.Fatalf("parse %q: root must be created last", text)
		}
		if got := grouped(b, root); got != want {
			t.Fatalf("parse %q = %q, want %q", text, got, want)
		}
	}
}

func TestParseExprErrors(t *testing.T) {
	env := newTypeEnv(types.NewInterner(), source.NewInterner())
	for _, text := range []string{"", "a +", "f(a", "x.", "a b", "#"} {
		bag := diag.NewBag(4)
		b := ast.NewBuilder(ast.Hints{}, env.strings)
		if _, _, ok := parseExprSnippet(text, source.Span{}, env, b, diag.BagReporter{Bag: bag}); ok {
			t.Fatalf("parse %q must fail", text)
		}
		if bag.Len() != 1 || bag.Items()[0].Code != diag.FixBadExpr {
			t.Fatalf("parse %q diagnostics = %+v", text, bag.Items())
		}
	}
}

func TestCanonicalVars(t *testing.T) {
	in := types.NewInterner()
	intTy := in.Builtins().Int
	ref := func(v types.RegionVarID) types.TypeID {
		return in.Intern(types.MakeReference(types.MakeVar(v), intTy, false))
	}
	got := CanonicalVars(in, in.RegisterTuple([]types.TypeID{ref(9), ref(4), ref(9)}))
	want := in.RegisterTuple([]types.TypeID{ref(0), ref(1), ref(0)})
	if got != want {
		p := types.Printer{Types: in}
		t.Fatalf("CanonicalVars = %s, want %s", p.TypeString(got), p.TypeString(want))
	}
}

func TestCanonicalVarsExpandsAliases(t *testing.T) {
	sc, bag, ok := loadTestdata(t, "aliases.toml")
	if !ok {
		t.Fatalf("aliases.toml reported diagnostics: %v", bag.Items())
	}
	fn := findFunction(t, sc, "aliased")
	if len(fn.Instantiations) != 4 {
		t.Fatalf("instantiations = %d, want 4", len(fn.Instantiations))
	}
	p := sc.Printer()
	target := fn.Instantiations[0].Target
	if got := p.TypeString(target); got != "(Holder<'b>, &'a int, Ints = &'a [int])" {
		t.Fatalf("target = %q", got)
	}
	if got := p.TypeString(CanonicalVars(sc.Types, target)); got != "(Holder<'b>, &'a int, &'a [int])" {
		t.Fatalf("canonical target = %q", got)
	}
	if got := p.TypeString(CanonicalVars(sc.Types, fn.Instantiations[1].Target)); got != "(&'a int, int)" {
		t.Fatalf("region-free alias not expanded: %q", got)
	}
}

func TestLoadExprSpansNest(t *testing.T) {
	fs := source.NewFileSet()
	id, err := fs.Load(filepath.Join("testdata", "basic.toml"))
	if err != nil {
		t.Fatal(err)
	}
	sc, ok := Load(fs, id, diag.BagReporter{Bag: diag.NewBag(100)})
	if !ok {
		t.Fatalf("basic.toml failed to load")
	}
	places := findFunction(t, sc, "places")
	for _, c := range places.Borrows {
		if err := testkit.CheckExprSpans(places.Builder.Exprs, c.Expr, fs.Get(id), c.Span); err != nil {
			t.Errorf("%s: %v", c.Text, err)
		}
	}
}
