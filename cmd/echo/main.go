package main

import (
	maelstrom "github.com/jepsen-io/maelstrom/demo/go"

	"github.com/dostini/maelnode/internal/app"
	"github.com/dostini/maelnode/pkg/node"
)

// echo sends the request's echo value back untouched.
func echo(msg node.Message, id *node.Identity) (*node.Body, error) {
	raw, found := msg.Body.Fields.Get("echo")
	if !found {
		return nil, maelstrom.NewRPCError(maelstrom.MalformedRequest, "missing echo field")
	}

	body := node.NewBody("echo_ok")
	if err := body.Fields.SetRaw("echo", raw); err != nil {
		return nil, err
	}

	return &body, nil
}

func main() {
	n, log := app.Must(app.NewNode("echo"))

	n.Handle("echo", echo)

	app.Run(n, log)
}
