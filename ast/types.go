package ast

import "github.com/binpacc/binpacc/token"

// TypeKind enumerates every BinPAC++ type shape: the built-in atomic types
// parseable units are built from, the container and composite types, and
// the bookkeeping kinds (TUnknown, TByName) the passes consume as they
// progressively pin down a program's real types.
type TypeKind uint8

const (
	TVoid TypeKind = iota
	TAny
	TUnknown // not yet resolved; see Module.UnknownType
	TBool
	TInteger
	TDouble
	TString
	TBytes
	TAddress
	TNetwork
	TPort
	TInterval
	TTime
	TEnum
	TBitset
	TTuple
	TList
	TVector
	TSet
	TMap
	TRegExp
	TFunction
	TUnit
	TByName // an unresolved `Foo` type reference; RefName/Resolved below
	TIterator
	TOptionalArgument
	TSink
	TFile
	TCAddr
	TEmbeddedObject
)

func (k TypeKind) String() string {
	if int(k) < len(typeKindNames) {
		return typeKindNames[k]
	}
	return "unknown-type"
}

var typeKindNames = [...]string{
	TVoid: "void", TAny: "any", TUnknown: "<unknown>", TBool: "bool",
	TInteger: "integer", TDouble: "double", TString: "string", TBytes: "bytes",
	TAddress: "addr", TNetwork: "net", TPort: "port", TInterval: "interval", TTime: "time",
	TEnum: "enum", TBitset: "bitset", TTuple: "tuple",
	TList: "list", TVector: "vector", TSet: "set", TMap: "map",
	TRegExp: "regexp", TFunction: "function", TUnit: "unit", TByName: "<by-name>",
	TIterator: "iterator", TOptionalArgument: "<optional-argument>",
	TSink: "sink", TFile: "file", TCAddr: "caddr", TEmbeddedObject: "<embedded-object>",
}

// EnumLabel is one `NAME = value` member of an enum or bitset type.
type EnumLabel struct {
	Name  string
	Value int64
}

// Type is the single tagged node for every type shape. Only the fields
// relevant to TKind are meaningful; the rest sit at their zero value. One
// struct (rather than 29 concrete Go types) keeps every pass's type-level
// switch a single statement instead of a chain of type assertions.
type Type struct {
	TPos token.Pos
	TKind TypeKind

	// TInteger
	Width  int
	Signed bool

	// TEnum, TBitset
	Labels []EnumLabel

	// TList, TVector, TSet: element type. TMap: Key/Value. TTuple: Elements.
	Elem     NodeID
	Key      NodeID
	Value    NodeID
	Elements []NodeID

	// TFunction
	Params []NodeID // Declaration(DeclVariable) NodeIDs describing parameter shapes
	Result NodeID

	// TUnit
	UnitParams []NodeID // Declaration(DeclVariable) NodeIDs: the unit's own parameters
	Items      []NodeID // UnitItem NodeIDs, in source order
	Hooks      []NodeID // global `on %init`/`on %done` Hook NodeIDs attached to this unit
	UScope     *Scope    // the unit's own field/hook scope, built by the unit scope builder

	// TByName
	RefName  string
	Resolved NodeID // filled in by the ID resolver once the name is looked up

	// TIterator
	Over NodeID // the container/sink type being iterated
}

func (t *Type) Kind() Kind          { return KindType }
func (t *Type) Position() token.Pos { return t.TPos }

// AttributeSchemaEntry describes one recognized attribute key for a
// parseable atomic type: its key, whether a missing occurrence should be
// inserted implicitly by the normalizer, and — when Implicit is true — the
// literal Go value used to synthesize that default's constant expression.
type AttributeSchemaEntry struct {
	Key          string
	Implicit     bool
	DefaultValue interface{}
}

// AttributeSchema returns the recognized attribute keys for a parseable
// TypeKind. A key not present here makes AttributeError diagnostics fire
// when a field attaches it. Fields of non-parseable kinds (TUnit aside,
// which publishes no attributes of its own — its *items* do) have no
// schema at all.
func AttributeSchema(k TypeKind) []AttributeSchemaEntry {
	switch k {
	case TBytes, TString:
		return []AttributeSchemaEntry{
			{Key: "length"},
			{Key: "until"},
			{Key: "eod", Implicit: true, DefaultValue: false},
			{Key: "chunked", Implicit: true, DefaultValue: false},
			{Key: "convert"},
		}
	case TList, TVector, TSet:
		return []AttributeSchemaEntry{
			{Key: "length"},
			{Key: "until"},
			{Key: "count"},
			{Key: "chunked", Implicit: true, DefaultValue: false},
		}
	case TRegExp:
		return []AttributeSchemaEntry{
			{Key: "nosub", Implicit: true, DefaultValue: false},
		}
	case TInteger, TBool, TDouble, TEnum, TBitset, TAddress, TPort, TTime, TInterval:
		return []AttributeSchemaEntry{
			{Key: "byteorder"},
			{Key: "default"},
			{Key: "convert"},
		}
	default:
		return nil
	}
}

// AttributeSchemaLookup returns the single schema entry for key within k's
// schema, if recognized.
func AttributeSchemaLookup(k TypeKind, key string) (AttributeSchemaEntry, bool) {
	for _, e := range AttributeSchema(k) {
		if e.Key == key {
			return e, true
		}
	}
	return AttributeSchemaEntry{}, false
}
