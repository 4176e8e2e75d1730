package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Ошибки разбора сценариев
	FixInfo             Code = 1000
	FixSyntax           Code = 1001
	FixBadType          Code = 1002
	FixBadRegion        Code = 1003
	FixBadExpr          Code = 1004
	FixUnknownLocal     Code = 1005
	FixUnknownScope     Code = 1006
	FixDuplicateLocal   Code = 1007
	FixBadLocalKind     Code = 1008
	FixUnknownStruct    Code = 1009
	FixUnknownField     Code = 1010
	FixUntypedExpr      Code = 1011
	FixDuplicateFunc    Code = 1012
	FixInvalidTable     Code = 1013
	FixBadBoundName     Code = 1014
	FixUnknownTypeParam Code = 1015

	// Семантические
	SemaInfo                 Code = 3000
	SemaRegionInternal       Code = 3001
	SemaRegionMismatch       Code = 3002
	SemaInstantiateMismatch  Code = 3003
	SemaRegionSelfUnassigned Code = 3004
	SemaRegionTooDeep        Code = 3005

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Ошибки проекта
	ProjInfo          Code = 5000
	ProjInvalidConfig Code = 5001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:              "Unknown error",
	FixInfo:                  "Scenario information",
	FixSyntax:                "Malformed scenario file",
	FixBadType:               "Malformed type",
	FixBadRegion:             "Malformed region",
	FixBadExpr:               "Malformed expression",
	FixUnknownLocal:          "Unknown local",
	FixUnknownScope:          "Unknown scope",
	FixDuplicateLocal:        "Duplicate local",
	FixBadLocalKind:          "Unknown local kind",
	FixUnknownStruct:         "Unknown struct",
	FixUnknownField:          "Unknown field",
	FixUntypedExpr:           "Expression has no type",
	FixDuplicateFunc:         "Duplicate function",
	FixInvalidTable:          "Inconsistent symbol table",
	FixBadBoundName:          "Malformed bound region name",
	FixUnknownTypeParam:      "Unknown type parameter",
	SemaInfo:                 "Semantic information",
	SemaRegionInternal:       "Internal region invariant violated",
	SemaRegionMismatch:       "Borrow region mismatch",
	SemaInstantiateMismatch:  "Instantiated type mismatch",
	SemaRegionSelfUnassigned: "Receiver region is not assigned",
	SemaRegionTooDeep:        "Expression nesting too deep",
	IOLoadFileError:          "I/O load file error",
	IOCacheError:             "Result cache error",
	ProjInfo:                 "Project information",
	ProjInvalidConfig:        "Invalid project configuration",
	ObsInfo:                  "Observability information",
	ObsTimings:               "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("FIX%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
