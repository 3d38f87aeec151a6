// Package app wires configuration and logging into a node for the binaries
// under cmd/.
package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/dostini/maelnode/internal/config"
	"github.com/dostini/maelnode/internal/logging"
	"github.com/dostini/maelnode/pkg/node"
)

// NewNode builds a node on stdin/stdout that logs to stderr.
func NewNode(name string) (*node.Node, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("%s: %w", name, err)
	}

	log := logging.New(cfg.Log, os.Stderr, name)
	n := node.NewNode(
		node.WithLogger(log),
		node.WithReadBufferSize(cfg.ReadBufferBytes),
	)

	return n, log, nil
}

// Run blocks until stdin closes and exits non-zero if the node failed.
func Run(n *node.Node, log zerolog.Logger) {
	if err := n.Run(); err != nil {
		log.Fatal().Err(err).Msg("node stopped")
	}
}

// Must reports a setup error on stderr and exits.
func Must(n *node.Node, log zerolog.Logger, err error) (*node.Node, zerolog.Logger) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return n, log
}
