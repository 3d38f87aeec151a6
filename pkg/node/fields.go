package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Fields holds the body keys the envelope itself does not know about. Values
// are kept as compact JSON and are written back in the order they were set.
type Fields struct {
	keys   []string
	values map[string]json.RawMessage
}

func isReserved(key string) bool {
	switch key {
	case "type", "msg_id", "in_reply_to":
		return true
	}
	return false
}

// Set marshals v and stores it under key.
func (f *Fields) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal field %q: %w", key, err)
	}
	return f.SetRaw(key, raw)
}

// SetRaw stores an already encoded value. A key that is already present keeps
// its position. Copies of a Body share nothing after a write: the storage is
// replaced, never modified in place.
func (f *Fields) SetRaw(key string, raw json.RawMessage) error {
	if isReserved(key) {
		return fmt.Errorf("%w: %q", ErrReservedField, key)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}

	values := maps.Clone(f.values)
	if values == nil {
		values = map[string]json.RawMessage{}
	}
	keys := f.keys
	if _, found := values[key]; !found {
		keys = append(slices.Clip(f.keys), key)
	}
	values[key] = json.RawMessage(buf.Bytes())

	f.keys, f.values = keys, values
	return nil
}

// put appends without copying; only for Fields nothing else can see yet.
func (f *Fields) put(key string, raw json.RawMessage) {
	if f.values == nil {
		f.values = map[string]json.RawMessage{}
	}
	if _, found := f.values[key]; !found {
		f.keys = append(f.keys, key)
	}
	f.values[key] = raw
}

func (f Fields) Get(key string) (json.RawMessage, bool) {
	v, found := f.values[key]
	return v, found
}

// Decode unmarshals the value stored under key into v.
func (f Fields) Decode(key string, v any) error {
	raw, found := f.values[key]
	if !found {
		return fmt.Errorf("field %q not present", key)
	}
	return json.Unmarshal(raw, v)
}

func (f *Fields) Delete(key string) {
	i := slices.Index(f.keys, key)
	if i < 0 {
		return
	}

	values := maps.Clone(f.values)
	delete(values, key)

	f.keys = slices.Concat(f.keys[:i:i], f.keys[i+1:])
	f.values = values
}

func (f Fields) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

func (f Fields) Len() int {
	return len(f.keys)
}

// Clone returns a copy that shares no state with f.
func (f Fields) Clone() Fields {
	if len(f.keys) == 0 {
		return Fields{}
	}
	return Fields{keys: slices.Clone(f.keys), values: maps.Clone(f.values)}
}
