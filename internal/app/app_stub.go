//go:build !ebiten

package app

import (
	"errors"

	"par-ca/internal/config"
	"par-ca/internal/core"
)

// Run reports that the window build is unavailable. Rebuild with the
// 'ebiten' tag for rendering support.
func Run(config.Config, core.Automaton, []byte) error {
	return errors.New("rendering requires building with the 'ebiten' tag")
}
