package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies the JSON type held by a Value.
type Kind uint8

const (
	// KindUndefined is the zero Value. It stands for "no result".
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded JSON value of any kind.
//
// Responses from Jira are decoded into Values so that records with unknown
// keys survive decoding untouched. Numbers keep their textual form to avoid
// float rounding of large identifiers.
type Value struct {
	kind   Kind
	b      bool
	n      json.Number
	s      string
	array  []Value
	object Payload
}

// Payload is a decoded JSON object.
type Payload map[string]Value

// ParseValue decodes a JSON document.
func ParseValue(data []byte) (Value, error) {
	var value Value

	err := json.Unmarshal(data, &value)
	if err != nil {
		return Value{}, fmt.Errorf("parsing JSON value: %w", err)
	}

	return value, nil
}

// NullValue returns a JSON null.
func NullValue() Value { return Value{kind: KindNull} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// NumberValue wraps a JSON number.
func NumberValue(n json.Number) Value { return Value{kind: KindNumber, n: n} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return NumberValue(json.Number(strconv.FormatInt(i, 10))) }

// ArrayValue wraps a list of values.
func ArrayValue(values []Value) Value { return Value{kind: KindArray, array: values} }

// ObjectValue wraps an object.
func ObjectValue(payload Payload) Value { return Value{kind: KindObject, object: payload} }

// FromInterface converts the output of encoding/json (or any value built from
// maps, slices and scalars) into a Value.
func FromInterface(raw interface{}) Value {
	switch typed := raw.(type) {
	case nil:
		return NullValue()
	case Value:
		return typed
	case Payload:
		return ObjectValue(typed)
	case bool:
		return BoolValue(typed)
	case string:
		return StringValue(typed)
	case json.Number:
		return NumberValue(typed)
	case float64:
		return NumberValue(json.Number(strconv.FormatFloat(typed, 'f', -1, 64)))
	case int:
		return IntValue(int64(typed))
	case int64:
		return IntValue(typed)
	case []interface{}:
		values := make([]Value, len(typed))
		for i, item := range typed {
			values[i] = FromInterface(item)
		}

		return ArrayValue(values)
	case []string:
		values := make([]Value, len(typed))
		for i, item := range typed {
			values[i] = StringValue(item)
		}

		return ArrayValue(values)
	case map[string]interface{}:
		payload := make(Payload, len(typed))
		for key, item := range typed {
			payload[key] = FromInterface(item)
		}

		return ObjectValue(payload)
	default:
		return StringValue(fmt.Sprint(typed))
	}
}

// Kind reports the JSON type of the value.
func (v Value) Kind() Kind { return v.kind }

// Exists is false only for the zero Value.
func (v Value) Exists() bool { return v.kind != KindUndefined }

// IsNull reports whether the value is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsEmpty reports whether the value carries no data: undefined, null, false,
// an empty string, an empty array or an empty object.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return !v.b
	case KindString:
		return v.s == ""
	case KindArray:
		return len(v.array) == 0
	case KindObject:
		return len(v.object) == 0
	default:
		return false
	}
}

// Str returns the string held by the value.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}

	return v.s, true
}

// Bool returns the bool held by the value.
func (v Value) Bool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}

	return v.b, true
}

// Number returns the number held by the value in its original text form.
func (v Value) Number() (json.Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}

	return v.n, true
}

// Int returns the value as an integer. Numeric strings are accepted because
// Jira serialises most identifiers as strings.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindNumber:
		i, err := v.n.Int64()
		if err == nil {
			return i, true
		}

		f, err := v.n.Float64()
		if err != nil {
			return 0, false
		}

		return int64(f), true
	case KindString:
		i, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, false
		}

		return i, true
	default:
		return 0, false
	}
}

// Array returns the elements of an array value.
func (v Value) Array() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}

	return v.array, true
}

// Object returns the members of an object value.
func (v Value) Object() (Payload, bool) {
	if v.kind != KindObject {
		return nil, false
	}

	return v.object, true
}

// Text renders scalars as text; arrays and objects render as compact JSON.
func (v Value) Text() string {
	switch v.kind {
	case KindUndefined, KindNull:
		return ""
	case KindString:
		return v.s
	case KindNumber:
		return v.n.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}

		return string(data)
	}
}

// Interface converts the value back into plain Go types.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, len(v.array))
		for i, item := range v.array {
			out[i] = item.Interface()
		}

		return out
	case KindObject:
		return v.object.Interface()
	default:
		return nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw interface{}

	err := decoder.Decode(&raw)
	if err != nil {
		return err
	}

	*v = FromInterface(raw)

	return nil
}

// MarshalJSON implements json.Marshaler. The zero Value encodes as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Lookup returns the member stored under key.
func (p Payload) Lookup(key string) (Value, bool) {
	value, ok := p[key]

	return value, ok
}

// Has reports whether key is present, whatever its value.
func (p Payload) Has(key string) bool {
	_, ok := p[key]

	return ok
}

// Get returns the member stored under key, or the zero Value.
func (p Payload) Get(key string) Value {
	return p[key]
}

// String returns the string stored under key, or "".
func (p Payload) String(key string) string {
	s, _ := p[key].Str()

	return s
}

// Int returns the integer stored under key.
func (p Payload) Int(key string) (int, bool) {
	i, ok := p[key].Int()

	return int(i), ok
}

// Bool returns the bool stored under key, or false.
func (p Payload) Bool(key string) bool {
	b, _ := p[key].Bool()

	return b
}

// Object returns the object stored under key, or nil.
func (p Payload) Object(key string) Payload {
	obj, _ := p[key].Object()

	return obj
}

// Array returns the array stored under key, or nil.
func (p Payload) Array(key string) []Value {
	arr, _ := p[key].Array()

	return arr
}

// Keys returns the member names in sorted order.
func (p Payload) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// Clone returns a shallow copy of the payload.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for key, value := range p {
		out[key] = value
	}

	return out
}

// Interface converts the payload into a map of plain Go types.
func (p Payload) Interface() map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for key, value := range p {
		out[key] = value.Interface()
	}

	return out
}
