package main

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dostini/maelnode/internal/app"
	"github.com/dostini/maelnode/pkg/node"
)

// generate answers with an id that is unique across the cluster: the node id
// keeps nodes apart and a random UUID keeps requests apart.
func generate(msg node.Message, id *node.Identity) (*node.Body, error) {
	if err := id.Require(); err != nil {
		return nil, err
	}

	body := node.NewBody("generate_ok")
	if err := body.Fields.Set("id", fmt.Sprintf("%s-%s", id.ID(), uuid.NewString())); err != nil {
		return nil, err
	}

	return &body, nil
}

func main() {
	n, log := app.Must(app.NewNode("unique-id"))

	n.Handle("generate", generate)

	app.Run(n, log)
}
