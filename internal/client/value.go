package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind discriminates the possible shapes of a check config value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindMapping
	KindSequence
)

// Value is a tagged, order-preserving representation of a check's config.
// Configs arrive as arbitrary JSON and are handed to check scripts verbatim
// on stdin, so a decode/encode round trip must not reorder mapping keys or
// reformat numbers. encoding/json's map[string]any loses both; Value keeps
// the original member order and the raw number literals.
type Value struct {
	kind   Kind
	str    string
	num    string // raw JSON literal, e.g. "1e3" stays "1e3"
	b      bool
	keys   []string
	fields map[string]*Value
	items  []*Value
}

// EmptyMapping returns a new empty mapping value.
func EmptyMapping() *Value {
	return &Value{kind: KindMapping, fields: map[string]*Value{}}
}

// Kind reports the value's shape.
func (v *Value) Kind() Kind { return v.kind }

// Str returns the string content of a KindString value.
func (v *Value) Str() string { return v.str }

// Num returns the raw numeric literal of a KindNumber value.
func (v *Value) Num() string { return v.num }

// Bool returns the content of a KindBool value.
func (v *Value) Bool() bool { return v.b }

// Keys returns mapping keys in wire order.
func (v *Value) Keys() []string { return v.keys }

// Field looks up a mapping member by key.
func (v *Value) Field(key string) (*Value, bool) {
	f, ok := v.fields[key]
	return f, ok
}

// Items returns the elements of a KindSequence value.
func (v *Value) Items() []*Value { return v.items }

// UnmarshalJSON decodes arbitrary JSON into a Value, preserving mapping
// member order and numeric literals.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	decoded, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = *decoded
	return nil
}

func decodeValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := EmptyMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, exists := m.fields[key]; !exists {
					m.keys = append(m.keys, key)
				}
				m.fields[key] = child
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return m, nil
		case '[':
			s := &Value{kind: KindSequence}
			for dec.More() {
				child, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				s.items = append(s.items, child)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			return s, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return &Value{kind: KindString, str: t}, nil
	case json.Number:
		return &Value{kind: KindNumber, num: t.String()}, nil
	case bool:
		return &Value{kind: KindBool, b: t}, nil
	case nil:
		return &Value{kind: KindNull}, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// MarshalJSON renders the value as compact JSON, mapping members in wire
// order. This is the exact form check scripts receive on stdin.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v *Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		buf.WriteString(v.num)
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindMapping:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeValue(buf, v.fields[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("unknown value kind %d", v.kind)
	}
	return nil
}
