package main

import (
	"fmt"
	"slices"

	maelstrom "github.com/jepsen-io/maelstrom/demo/go"

	"github.com/dostini/maelnode/internal/app"
	atomicmap "github.com/dostini/maelnode/pkg/atomic_map"
	"github.com/dostini/maelnode/pkg/node"
)

// server keeps every value it was asked to broadcast. Values are not
// forwarded to other nodes, so a topology is only checked, not kept.
type server struct {
	messages *atomicmap.AtomicMap[int, struct{}]
}

func newServer() *server {
	return &server{
		messages: atomicmap.NewAtomicMap[int, struct{}](),
	}
}

func (s *server) broadcast(msg node.Message, id *node.Identity) (*node.Body, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}

	var message *int
	if err := msg.Body.Fields.Decode("message", &message); err != nil || message == nil {
		return nil, maelstrom.NewRPCError(maelstrom.MalformedRequest, "broadcast needs an integer message")
	}

	s.messages.SetIfAbsent(*message, struct{}{})

	body := node.NewBody("broadcast_ok")
	return &body, nil
}

func (s *server) read(msg node.Message, id *node.Identity) (*node.Body, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}

	messages := s.messages.Keys()
	slices.Sort(messages)

	body := node.NewBody("read_ok")
	if err := body.Fields.Set("messages", messages); err != nil {
		return nil, err
	}
	return &body, nil
}

func (s *server) topology(msg node.Message, id *node.Identity) (*node.Body, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}

	var topology map[string][]string
	if err := msg.Body.Fields.Decode("topology", &topology); err != nil {
		return nil, maelstrom.NewRPCError(maelstrom.MalformedRequest, "topology must map node ids to lists")
	}

	for owner, neighbours := range topology {
		for _, other := range append([]string{owner}, neighbours...) {
			if !id.Contains(other) {
				return nil, maelstrom.NewRPCError(maelstrom.MalformedRequest, fmt.Sprintf("topology names unknown node %q", other))
			}
		}
	}

	body := node.NewBody("topology_ok")
	return &body, nil
}

func (s *server) register(n *node.Node) {
	n.Handle("broadcast", s.broadcast)
	n.Handle("read", s.read)
	n.Handle("topology", s.topology)
}

func main() {
	n, log := app.Must(app.NewNode("broadcast"))

	newServer().register(n)

	app.Run(n, log)
}
