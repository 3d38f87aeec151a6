package node

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
)

const defaultReadBufferSize = 64 * 1024

// Record is one line of input: either a parsed Message or the reason it
// could not be parsed.
type Record struct {
	Line    int
	Message Message
	Err     error
}

func (r Record) OK() bool {
	return r.Err == nil
}

// Decoder splits a stream into newline-delimited envelopes.
type Decoder struct {
	reader *bufio.Reader
	line   int
	err    error
}

func NewDecoder(r io.Reader, bufferSize int) *Decoder {
	if bufferSize <= 0 {
		bufferSize = defaultReadBufferSize
	}
	return &Decoder{reader: bufio.NewReaderSize(r, bufferSize)}
}

// Records yields one Record per non-blank input line until the stream ends.
// A bad line never stops the sequence. The sequence can be ranged over once.
func (d *Decoder) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for {
			in, err := d.reader.ReadBytes('\n')
			if len(in) > 0 {
				d.line++
				if trimmed := bytes.TrimSpace(in); len(trimmed) > 0 {
					if !yield(parseRecord(d.line, trimmed)) {
						return
					}
				}
			}

			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				d.err = err
				return
			}
		}
	}
}

// Err returns the read error that ended Records, or nil on a clean end of input.
func (d *Decoder) Err() error {
	return d.err
}

func parseRecord(line int, in []byte) Record {
	var msg Message
	if err := json.Unmarshal(in, &msg); err != nil {
		return Record{
			Line: line,
			Err:  &ParseError{Line: line, Raw: string(in), Err: err},
		}
	}
	return Record{Line: line, Message: msg}
}

// Encoder writes one envelope per line. Each envelope reaches the underlying
// writer in a single Write call.
type Encoder struct {
	mu     sync.Mutex
	writer io.Writer
	buf    bytes.Buffer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{writer: w}
}

func (e *Encoder) Encode(msg Message) error {
	if msg.Src == "" || msg.Dest == "" {
		return ErrMissingAddress
	}

	defer e.mu.Unlock()
	e.mu.Lock()

	e.buf.Reset()
	enc := json.NewEncoder(&e.buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	_, err := e.writer.Write(e.buf.Bytes())
	return err
}
