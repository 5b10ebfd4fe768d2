package kvstore

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgError "github.com/AzielCF/az-vkmacro/pkg/error"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// prettyOptions keeps keys in declared order; order is significant for pattern tie-breaks.
var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "    ", SortKeys: false}

// Mapping is a flat string->string object that remembers the order in which
// keys were first declared.
type Mapping struct {
	keys   []string
	values map[string]string
}

func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]string)}
}

// ParseMapping decodes a JSON object whose values are all strings.
// A repeated key keeps its first position and its last value.
func ParseMapping(data []byte) (*Mapping, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, pkgError.ValidationError("payload is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, pkgError.ValidationError("payload must be a JSON object")
	}

	m := NewMapping()
	var shapeErr error
	root.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			shapeErr = pkgError.ValidationError(fmt.Sprintf("value of %q must be a string", key.String()))
			return false
		}
		m.Set(key.String(), value.String())
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	return m, nil
}

func (m *Mapping) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in declared order.
func (m *Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Mapping) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *Mapping) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Mapping) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

func (m *Mapping) Clone() *Mapping {
	c := &Mapping{
		keys:   m.Keys(),
		values: make(map[string]string, len(m.values)),
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether both mappings hold the same entries in the same order.
func (m *Mapping) Equal(other *Mapping) bool {
	if other == nil || len(m.keys) != len(other.keys) {
		return false
	}
	for i, k := range m.keys {
		if other.keys[i] != k || other.values[k] != m.values[k] {
			return false
		}
	}
	return true
}

// Marshal renders the mapping as indented JSON in declared key order.
func (m *Mapping) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, m.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return pretty.PrettyOptions(buf.Bytes(), prettyOptions), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode %q: %w", s, err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
