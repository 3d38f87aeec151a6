package node

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"
	"github.com/rs/zerolog"
)

// HandlerFunc answers one message. A nil body means no reply. Returning an
// error sends a Maelstrom error reply instead; use *maelstrom.RPCError to pick
// the code. Handlers that depend on the identity should return the result of
// id.Require(): ErrUninitialized drops the message without a reply.
type HandlerFunc func(msg Message, id *Identity) (*Body, error)

type Option func(*Node)

func WithInput(r io.Reader) Option {
	return func(n *Node) { n.input = r }
}

func WithOutput(w io.Writer) Option {
	return func(n *Node) { n.output = w }
}

// WithLogger sets the diagnostic sink. It must not share a writer with the
// output stream.
func WithLogger(log zerolog.Logger) Option {
	return func(n *Node) { n.log = log }
}

func WithReadBufferSize(size int) Option {
	return func(n *Node) { n.bufferSize = size }
}

// Stats counts what the node did with its input.
type Stats struct {
	Records       uint64
	Replies       uint64
	Sent          uint64
	ParseFailures uint64
	Unhandled     uint64
	Rejected      uint64
	HandlerErrors uint64
}

type counters struct {
	records       atomic.Uint64
	replies       atomic.Uint64
	sent          atomic.Uint64
	parseFailures atomic.Uint64
	unhandled     atomic.Uint64
	rejected      atomic.Uint64
	handlerErrors atomic.Uint64
}

type Node struct {
	identity *Identity

	input      io.Reader
	output     io.Writer
	bufferSize int

	decoder *Decoder
	encoder *Encoder

	log zerolog.Logger

	idCounter atomic.Uint64
	stats     counters

	handlers map[string]HandlerFunc
}

func NewNode(opts ...Option) *Node {
	n := &Node{
		identity: &Identity{},
		input:    os.Stdin,
		output:   os.Stdout,
		log:      zerolog.New(os.Stderr).With().Timestamp().Logger(),
		handlers: map[string]HandlerFunc{},
	}
	for _, opt := range opts {
		opt(n)
	}

	n.decoder = NewDecoder(n.input, n.bufferSize)
	n.encoder = NewEncoder(n.output)

	n.Handle(KindInit, initOK)

	return n
}

func initOK(msg Message, id *Identity) (*Body, error) {
	body := NewBody(ReplyKind(KindInit))
	return &body, nil
}

// Handle registers the handler for kind, replacing any previous one. The
// identity transition for init happens before its handler runs.
func (n *Node) Handle(kind string, handler HandlerFunc) {
	n.handlers[kind] = handler
}

func (n *Node) Identity() *Identity {
	return n.identity
}

func (n *Node) ID() string {
	return n.identity.ID()
}

func (n *Node) NodeIDs() []string {
	return n.identity.NodeIDs()
}

func (n *Node) Stats() Stats {
	return Stats{
		Records:       n.stats.records.Load(),
		Replies:       n.stats.replies.Load(),
		Sent:          n.stats.sent.Load(),
		ParseFailures: n.stats.parseFailures.Load(),
		Unhandled:     n.stats.unhandled.Load(),
		Rejected:      n.stats.rejected.Load(),
		HandlerErrors: n.stats.handlerErrors.Load(),
	}
}

// Run consumes the input until it ends. It returns nil on a clean end of
// input and an error when either stream fails. Run may only be called once.
func (n *Node) Run() error {
	defer n.logStats()

	for rec := range n.decoder.Records() {
		n.stats.records.Add(1)

		if !rec.OK() {
			n.stats.parseFailures.Add(1)
			event := n.log.Warn().Err(rec.Err).Int("line", rec.Line)
			var parseErr *ParseError
			if errors.As(rec.Err, &parseErr) {
				event = event.Str("raw", parseErr.Raw)
			}
			event.Msg("dropping malformed message")
			continue
		}

		if err := n.handleMessage(rec.Message); err != nil {
			return err
		}
	}

	if err := n.decoder.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	n.log.Info().Msg("input closed, shutting down")
	return nil
}

// Send originates a message to dest with the next msg_id of this node.
func (n *Node) Send(dest string, body Body) error {
	if !n.identity.Initialized() {
		return ErrUninitialized
	}

	body.MsgID = OptionalID(n.idCounter.Add(1))
	body.InReplyTo = nil

	msg := Message{Src: n.identity.ID(), Dest: dest, Body: body}
	if err := n.encoder.Encode(msg); err != nil {
		return err
	}

	n.stats.sent.Add(1)
	n.log.Debug().Str("dest", dest).Str("type", body.Type).Msg("sent message")

	return nil
}

func (n *Node) handleMessage(msg Message) error {
	kind := msg.Kind()
	log := n.log.With().Str("src", msg.Src).Str("type", kind).Logger()

	handler, found := n.handlers[kind]
	if !found {
		n.stats.unhandled.Add(1)
		log.Debug().Msg("no handler registered, skipping")
		return nil
	}

	if kind == KindInit {
		req, err := decodeInit(msg.Body)
		if err != nil {
			n.stats.rejected.Add(1)
			log.Warn().Err(err).Msg("dropping malformed init")
			return nil
		}
		if err := n.identity.Init(req.NodeID, req.NodeIDs); err != nil {
			n.stats.rejected.Add(1)
			log.Warn().Err(err).Msg("dropping init")
			return nil
		}
		log.Info().Str("node_id", req.NodeID).Strs("node_ids", req.NodeIDs).Msg("node initialized")
	}

	log.Debug().Msg("handling message")

	body, err := handler(msg, n.identity)
	if errors.Is(err, ErrUninitialized) {
		n.stats.rejected.Add(1)
		log.Warn().Err(err).Msg("dropping message received before init")
		return nil
	}
	if err != nil {
		return n.replyError(msg, err)
	}
	if body == nil {
		return nil
	}

	return n.reply(msg, *body)
}

func (n *Node) reply(req Message, body Body) error {
	if body.Type == "" {
		body.Type = ReplyKind(req.Kind())
	}

	body.InReplyTo = nil
	if req.Body.MsgID != nil {
		body.InReplyTo = OptionalID(*req.Body.MsgID)
	}

	msg := Message{Src: req.Dest, Dest: req.Src, Body: body}

	err := n.encoder.Encode(msg)
	if errors.Is(err, ErrEncode) || errors.Is(err, ErrMissingAddress) {
		n.stats.handlerErrors.Add(1)
		n.log.Error().Err(err).Str("type", body.Type).Msg("dropping reply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("write reply: %w", err)
	}

	n.stats.replies.Add(1)
	n.log.Debug().Str("dest", msg.Dest).Str("type", body.Type).Msg("replied message")

	return nil
}

func (n *Node) replyError(req Message, err error) error {
	n.stats.handlerErrors.Add(1)

	code, text := maelstrom.Crash, err.Error()
	var rpcErr *maelstrom.RPCError
	if errors.As(err, &rpcErr) {
		code, text = rpcErr.Code, rpcErr.Text
	}

	n.log.Warn().
		Err(err).
		Str("type", req.Kind()).
		Str("code", maelstrom.ErrorCodeText(code)).
		Msg("error handling message")

	return n.reply(req, errorBody(code, text))
}

func errorBody(code int, text string) Body {
	body := NewBody(KindError)
	_ = body.Fields.Set("code", code)
	_ = body.Fields.Set("text", text)
	return body
}

func (n *Node) logStats() {
	s := n.Stats()
	n.log.Info().
		Uint64("records", s.Records).
		Uint64("replies", s.Replies).
		Uint64("sent", s.Sent).
		Uint64("parse_failures", s.ParseFailures).
		Uint64("unhandled", s.Unhandled).
		Uint64("rejected", s.Rejected).
		Uint64("handler_errors", s.HandlerErrors).
		Msg("node stats")
}
