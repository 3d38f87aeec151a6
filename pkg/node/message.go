package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var errNotObject = errors.New("node: not a JSON object")

const (
	KindInit  = "init"
	KindError = "error"
)

// ReplyKind is the type a reply to kind carries by protocol convention.
func ReplyKind(kind string) string {
	return kind + "_ok"
}

// Message is one envelope on the wire.
type Message struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body Body   `json:"body"`
}

func (m Message) Kind() string {
	return m.Body.Type
}

// UnmarshalJSON matches "src", "dest" and "body" exactly; differently cased
// keys are ignored like any other unknown top-level key.
func (m *Message) UnmarshalJSON(data []byte) error {
	var out Message
	var body json.RawMessage

	err := walkObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "src":
			return json.Unmarshal(raw, &out.Src)
		case "dest":
			return json.Unmarshal(raw, &out.Dest)
		case "body":
			body = raw
		}
		return nil
	})
	if err != nil {
		return err
	}

	if out.Src == "" || out.Dest == "" {
		return ErrMissingAddress
	}
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return ErrMissingBody
	}
	if err := json.Unmarshal(body, &out.Body); err != nil {
		return err
	}

	*m = out
	return nil
}

// Body is the payload of a Message. MsgID and InReplyTo are nil when absent
// and are then left out of the encoded form entirely.
type Body struct {
	Type      string
	MsgID     *uint64
	InReplyTo *uint64
	Fields    Fields
}

// OptionalID returns a pointer suitable for Body.MsgID or Body.InReplyTo.
func OptionalID(v uint64) *uint64 {
	return &v
}

func NewBody(kind string) Body {
	return Body{Type: kind}
}

// Decode unmarshals the whole body, fixed keys included, into v.
func (b Body) Decode(v any) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (b Body) Clone() Body {
	out := Body{Type: b.Type, Fields: b.Fields.Clone()}
	if b.MsgID != nil {
		out.MsgID = OptionalID(*b.MsgID)
	}
	if b.InReplyTo != nil {
		out.InReplyTo = OptionalID(*b.InReplyTo)
	}
	return out
}

func (b Body) MarshalJSON() ([]byte, error) {
	if b.Type == "" {
		return nil, ErrMissingKind
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	if err := writeString(&buf, b.Type); err != nil {
		return nil, err
	}
	if b.MsgID != nil {
		buf.WriteString(`,"msg_id":`)
		buf.WriteString(strconv.FormatUint(*b.MsgID, 10))
	}
	if b.InReplyTo != nil {
		buf.WriteString(`,"in_reply_to":`)
		buf.WriteString(strconv.FormatUint(*b.InReplyTo, 10))
	}
	for _, key := range b.Fields.keys {
		buf.WriteByte(',')
		if err := writeString(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.Write(b.Fields.values[key])
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func (b *Body) UnmarshalJSON(data []byte) error {
	var out Body

	err := walkObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "type":
			if err := json.Unmarshal(raw, &out.Type); err != nil {
				return fmt.Errorf("%w: %v", ErrMissingKind, err)
			}
		case "msg_id":
			out.MsgID = parseOptionalID(raw)
		case "in_reply_to":
			out.InReplyTo = parseOptionalID(raw)
		default:
			var buf bytes.Buffer
			if err := json.Compact(&buf, raw); err != nil {
				return err
			}
			out.Fields.put(key, buf.Bytes())
		}
		return nil
	})
	if err != nil {
		return err
	}

	if out.Type == "" {
		return ErrMissingKind
	}

	*b = out
	return nil
}

// walkObject calls fn for each member of a JSON object, in input order.
func walkObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errNotObject
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}

// parseOptionalID treats anything that is not an unsigned integer as absent.
func parseOptionalID(raw json.RawMessage) *uint64 {
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var v uint64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
