package vm

import (
	"encoding/json"
	"math/big"

	"github.com/dr8co/zinc/bytecode"
	"github.com/pkg/errors"
)

// InputField names one entry in a program's input-argument descriptor:
// the parameter name and its bytecode-level type, in declaration
// order. This is the decoded form of Program.InputDesc, the opaque
// JSON blob the emitter writes and the VM runner reads back.
type InputField struct {
	Name  string           `json:"name"`
	Type  bytecode.TypeTag `json:"type"`
	Width uint16           `json:"width,omitempty"`
}

// ParseInputDesc decodes a program's raw input descriptor.
func ParseInputDesc(raw []byte) ([]InputField, error) {
	var fields []InputField
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Wrap(err, "vm: decoding input descriptor")
	}
	return fields, nil
}

// EncodeInputDesc is the emitter-side counterpart of ParseInputDesc.
func EncodeInputDesc(fields []InputField) ([]byte, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(err, "vm: encoding input descriptor")
	}
	return raw, nil
}

// DecodeWitness parses a witness/public-data JSON object — one entry
// per input-descriptor field, integers carried as decimal strings to
// preserve arbitrary precision — into Values ordered to match desc,
// ready to pass to Run.
func DecodeWitness(raw []byte, desc []InputField) ([]Value, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(err, "vm: decoding witness JSON")
	}

	values := make([]Value, len(desc))
	for i, f := range desc {
		raw, ok := obj[f.Name]
		if !ok {
			return nil, errors.Errorf("vm: witness missing field %q", f.Name)
		}
		v, err := decodeWitnessField(raw, f)
		if err != nil {
			return nil, errors.Wrapf(err, "vm: field %q", f.Name)
		}
		values[i] = v
	}
	return values, nil
}

func decodeWitnessField(raw json.RawMessage, f InputField) (Value, error) {
	t := bytecode.Type{Tag: f.Type, Width: f.Width}
	if f.Type == bytecode.TagBool {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return boolValue(b), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return Value{}, errors.New("expected a JSON string for arbitrary-precision integer")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Value{}, errors.Errorf("invalid integer literal %q", s)
	}
	if err := checkRange(t, n); err != nil {
		return Value{}, err
	}
	return Value{Type: t, Int: n}, nil
}

// EncodeWitness is the inverse of DecodeWitness: it renders outputs
// (in the order Run returned them) back into a witness-shaped JSON
// object keyed by desc's field names, integers as decimal strings.
func EncodeWitness(values []Value, desc []InputField) ([]byte, error) {
	if len(values) != len(desc) {
		return nil, errors.Errorf("vm: %d output values for %d descriptor fields", len(values), len(desc))
	}
	obj := make(map[string]interface{}, len(desc))
	for i, f := range desc {
		if f.Type == bytecode.TagBool {
			obj[f.Name] = values[i].truthy()
		} else {
			obj[f.Name] = values[i].Int.String()
		}
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, errors.Wrap(err, "vm: encoding witness JSON")
	}
	return raw, nil
}
