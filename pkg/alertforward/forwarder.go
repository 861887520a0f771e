// Forwards alert notifications (from SNS) to chat / paging services
package alertforward

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/function61/gokit/logex"
)

type Forwarder interface {
	Name() string
	Forward(ctx context.Context, message string) error
}

type Dispatcher struct {
	forwarders []Forwarder
	logl       *logex.Leveled
}

func NewDispatcher(forwarders []Forwarder, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		forwarders: forwarders,
		logl:       logex.Levels(logger),
	}
}

// tries every destination even if some of them fail. failures are logged. returns error
// only if nobody got the message, so that retrying the whole thing cannot cause duplicate
// notifications.
func (d *Dispatcher) Forward(ctx context.Context, message string) error {
	if len(d.forwarders) == 0 {
		return errors.New("no alert forwarders configured")
	}

	delivered := 0

	for _, forwarder := range d.forwarders {
		if err := forwarder.Forward(ctx, message); err != nil {
			d.logl.Error.Printf("%s: %v", forwarder.Name(), err)
			continue
		}

		d.logl.Info.Printf("forwarded to %s", forwarder.Name())

		delivered++
	}

	if delivered == 0 {
		return fmt.Errorf("all %d alert forwarder(s) failed", len(d.forwarders))
	}

	return nil
}
