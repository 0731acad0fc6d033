package nav

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/luxury-retail/productlist/internal/catalog"
)

// Mode names how a selection leaves the app.
type Mode string

const (
	Embedded   Mode = "embedded"
	Standalone Mode = "standalone"
)

// DetailApp is the app that shows product details.
const DetailApp = "app2"

// Navigator forwards product selections to the container when embedded and to the
// detail app directly otherwise.
type Navigator struct {
	container *Container
	comm      Communicator
	log       zerolog.Logger
	// OnNavigate, when set, is told about every attempt.
	OnNavigate func(mode Mode, err error)
}

// NewNavigator builds a Navigator. A nil container selects standalone mode.
func NewNavigator(container *Container, comm Communicator, log zerolog.Logger) *Navigator {
	return &Navigator{container: container, comm: comm, log: log}
}

// Mode reports the active navigation mode.
func (n *Navigator) Mode() Mode {
	if n.container != nil {
		return Embedded
	}
	return Standalone
}

// ProductSelected hands p to the next app. It sends exactly one message and does not
// wait for the receiver.
func (n *Navigator) ProductSelected(ctx context.Context, p catalog.Product) error {
	mode := n.Mode()
	n.log.Info().Str("product", p.ID).Str("name", p.Name).Str("mode", string(mode)).Msg("product selected")

	var err error
	switch mode {
	case Embedded:
		err = n.container.Post(ctx, NavigateToApp2(p))
	default:
		if n.comm == nil {
			err = fmt.Errorf("no communicator configured")
			break
		}
		err = n.comm.NavigateToApp(ctx, DetailApp, p.Path(), map[string]any{"product": p})
	}
	if err != nil {
		n.log.Warn().Err(err).Str("product", p.ID).Msg("navigation failed")
	}
	if n.OnNavigate != nil {
		n.OnNavigate(mode, err)
	}
	return err
}

// Close releases the container connection, if any.
func (n *Navigator) Close() error {
	if n.container == nil {
		return nil
	}
	return n.container.Close()
}
