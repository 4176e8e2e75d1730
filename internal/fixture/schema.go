package fixture

// scenarioFile mirrors the TOML layout of a scenario file.
type scenarioFile struct {
	Structs   []structDecl   `toml:"struct"`
	Aliases   []aliasDecl    `toml:"alias"`
	Functions []functionDecl `toml:"function"`
}

type structDecl struct {
	Name    string      `toml:"name"`
	Regions []string    `toml:"regions"`
	Fields  []fieldDecl `toml:"field"`
}

type fieldDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type aliasDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type functionDecl struct {
	Name       string `toml:"name"`
	SelfRegion string `toml:"self_region"`
	// Scopes lists the parent of scope N at index N-1 (0 for a root).
	// When omitted the referenced scopes form a single chain.
	Scopes        []uint32          `toml:"scopes"`
	Locals        []localDecl       `toml:"local"`
	Borrows       []borrowDecl      `toml:"borrow"`
	Instantiation []instantiateDecl `toml:"instantiate"`
}

type localDecl struct {
	Name     string `toml:"name"`
	Kind     string `toml:"kind"`
	Scope    uint32 `toml:"scope"`
	Type     string `toml:"type"`
	Captures string `toml:"captures"`
}

type borrowDecl struct {
	Expr        string `toml:"expr"`
	Scope       uint32 `toml:"scope"`
	Expect      string `toml:"expect"`
	ExpectAbort bool   `toml:"expect_abort"`
}

type instantiateDecl struct {
	Bound       []string `toml:"bound"`
	Target      string   `toml:"target"`
	Expect      string   `toml:"expect"`
	ExpectAbort bool     `toml:"expect_abort"`
}
