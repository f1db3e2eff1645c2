package params

import (
	"fmt"
	"strings"
)

// ParamType is the closed set of wire types a tool parameter may take.
// There are exactly ten variants: five scalars and their homogeneous
// array forms. Composite or nested types are not representable.
type ParamType uint8

const (
	TypeString ParamType = iota
	TypeAddress
	TypeBool
	TypeInt
	TypeUint
	TypeStringArray
	TypeAddressArray
	TypeBoolArray
	TypeIntArray
	TypeUintArray
)

var typeNames = map[ParamType]string{
	TypeString:       "string",
	TypeAddress:      "address",
	TypeBool:         "bool",
	TypeInt:          "int",
	TypeUint:         "uint",
	TypeStringArray:  "string[]",
	TypeAddressArray: "address[]",
	TypeBoolArray:    "bool[]",
	TypeIntArray:     "int[]",
	TypeUintArray:    "uint[]",
}

func (t ParamType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("param_type(%d)", uint8(t))
}

// Valid reports whether t is one of the ten declared variants.
func (t ParamType) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// IsArray reports whether t is one of the array variants.
func (t ParamType) IsArray() bool {
	return t >= TypeStringArray && t <= TypeUintArray
}

// Elem returns the scalar element type of an array variant. For scalar
// types it returns the type unchanged.
func (t ParamType) Elem() ParamType {
	if t.IsArray() {
		return t - TypeStringArray
	}
	return t
}

// ParamDescription declares one parameter slot of a tool's input.
// It is immutable once published by a tool.
type ParamDescription struct {
	Type        ParamType `json:"type"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// InputDescription is the ordered parameter declaration of a tool. The
// sequence order is the canonical positional binding order; Name is the
// canonical by-name binding key. Both always agree: slot i is reachable
// only under the name InputDescription[i].Name.
type InputDescription []ParamDescription

// Validate checks that every slot has a valid type and a unique,
// non-empty name.
func (d InputDescription) Validate() error {
	seen := make(map[string]struct{}, len(d))
	for i, pd := range d {
		if !pd.Type.Valid() {
			return fmt.Errorf("param %d (%q): invalid type %d", i, pd.Name, uint8(pd.Type))
		}
		name := strings.TrimSpace(pd.Name)
		if name == "" {
			return fmt.Errorf("param %d: name is empty", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("param %d: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Index returns the positional slot bound to name, or -1.
func (d InputDescription) Index(name string) int {
	for i, pd := range d {
		if pd.Name == name {
			return i
		}
	}
	return -1
}

// ParamValue is a single encoded argument. Raw always decodes under
// Type; producing a ParamValue whose bytes do not is a contract
// violation on the producer's side, not a runtime state this package
// recovers from.
type ParamValue struct {
	Type ParamType `json:"type"`
	Raw  []byte    `json:"raw"`
}

// Input carries both representations of a marshalled invocation: the
// ordered value sequence for slot-level inspection and the combined
// binary blob for cheap forwarding. Decoding Blob against the owning
// tool's InputDescription yields exactly Values.
type Input struct {
	Values []ParamValue `json:"values"`
	Blob   []byte       `json:"blob"`
}

// NewInput assembles an Input from an ordered value sequence, deriving
// the combined blob.
func NewInput(values []ParamValue) Input {
	return Input{Values: values, Blob: EncodeBlob(values)}
}

// Arguments decodes the input by name against desc, for callees that
// bind by key instead of position.
func (in Input) Arguments(desc InputDescription) (map[string]any, error) {
	if len(in.Values) != len(desc) {
		return nil, fmt.Errorf("input has %d values, description declares %d", len(in.Values), len(desc))
	}
	args := make(map[string]any, len(desc))
	for i, pd := range desc {
		if in.Values[i].Type != pd.Type {
			return nil, fmt.Errorf("param %q: value type %s does not match declared %s", pd.Name, in.Values[i].Type, pd.Type)
		}
		val, err := in.Values[i].Decode()
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", pd.Name, err)
		}
		args[pd.Name] = val
	}
	return args, nil
}
