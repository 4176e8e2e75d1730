package types

import (
	"slices"

	"regionck/internal/source"
)

// StructField describes a single field inside a nominal struct type.
// Field types are written in terms of the declaration's region params.
type StructField struct {
	Name source.StringID
	Type TypeID
}

// StructDecl is the declaration shared by every instance of a struct.
type StructDecl struct {
	Name         source.StringID
	RegionParams []BoundRegion
	Fields       []StructField
}

// StructInfo describes one instance: a declaration applied to concrete
// region and type arguments.
type StructInfo struct {
	Decl     uint32
	Regions  []Region
	TypeArgs []TypeID
}

// AliasInfo stores metadata for a nominal alias type.
type AliasInfo struct {
	Name   source.StringID
	Target TypeID
}

// DeclareStruct records a struct declaration and returns its handle.
func (in *Interner) DeclareStruct(name source.StringID, params []BoundRegion, fields []StructField) uint32 {
	in.decls = append(in.decls, StructDecl{
		Name:         name,
		RegionParams: slices.Clone(params),
		Fields:       slices.Clone(fields),
	})
	return slotFor(len(in.decls)-1, "struct decl")
}

// StructDecl returns the declaration behind handle.
func (in *Interner) StructDecl(decl uint32) (*StructDecl, bool) {
	if decl == 0 || int(decl) >= len(in.decls) {
		return nil, false
	}
	return &in.decls[decl], true
}

// RegisterStruct creates or finds the instance of decl with the given arguments.
func (in *Interner) RegisterStruct(decl uint32, regions []Region, args []TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindStruct || int(tt.Payload) >= len(in.structs) {
			continue
		}
		info := in.structs[tt.Payload]
		if info.Decl == decl && slices.Equal(info.Regions, regions) && slices.Equal(info.TypeArgs, args) {
			return id
		}
	}
	in.structs = append(in.structs, StructInfo{
		Decl:     decl,
		Regions:  cloneRegions(regions),
		TypeArgs: cloneTypeArgs(args),
	})
	slot := slotFor(len(in.structs)-1, "struct")
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(id TypeID) (*StructInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindStruct {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[tt.Payload], true
}

// FieldType returns the type of field name in struct instance id, with the
// declaration's region params replaced by the instance's region arguments.
func (in *Interner) FieldType(id TypeID, name source.StringID) (TypeID, bool) {
	info, ok := in.StructInfo(id)
	if !ok {
		return NoTypeID, false
	}
	decl, ok := in.StructDecl(info.Decl)
	if !ok {
		return NoTypeID, false
	}
	for _, field := range decl.Fields {
		if field.Name != name {
			continue
		}
		if len(decl.RegionParams) == 0 {
			return field.Type, true
		}
		return in.FoldRegions(field.Type, func(r Region, _ bool) Region {
			if !r.IsBound() {
				return r
			}
			for i, param := range decl.RegionParams {
				if param == r.Bound && i < len(info.Regions) {
					return info.Regions[i]
				}
			}
			return r
		}), true
	}
	return NoTypeID, false
}

// RegisterAlias creates or finds an alias name = target.
func (in *Interner) RegisterAlias(name source.StringID, target TypeID) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindAlias || int(tt.Payload) >= len(in.aliases) {
			continue
		}
		info := in.aliases[tt.Payload]
		if info.Name == name && info.Target == target {
			return id
		}
	}
	in.aliases = append(in.aliases, AliasInfo{Name: name, Target: target})
	slot := slotFor(len(in.aliases)-1, "alias")
	return in.internRaw(Type{Kind: KindAlias, Payload: slot})
}

// AliasInfo returns metadata for the provided alias TypeID.
func (in *Interner) AliasInfo(id TypeID) (*AliasInfo, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindAlias {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.aliases) {
		return nil, false
	}
	return &in.aliases[tt.Payload], true
}

// ResolveAlias follows alias chains to the first non-alias type.
func (in *Interner) ResolveAlias(id TypeID) TypeID {
	for range len(in.aliases) {
		info, ok := in.AliasInfo(id)
		if !ok {
			return id
		}
		id = info.Target
	}
	return id
}
