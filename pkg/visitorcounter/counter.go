// Counts unique visitors of a web page. A visitor counts again only after the cooldown
// window, which is anchored to the visitor's last *counted* visit.
package visitorcounter

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"github.com/function61/gokit/logex"
	"github.com/function61/lambda-visitorcounter/pkg/vcstore"
)

const (
	CooldownWindow = 2 * time.Minute
)

var ErrMissingVisitorIp = errors.New("missing visitor IP")

type VisitResult struct {
	Count   int64
	Counted bool // false = repeat visit within the cooldown window
}

type Counter struct {
	store vcstore.Store
	now   func() time.Time
	logl  *logex.Leveled
}

func New(store vcstore.Store, now func() time.Time, logger *log.Logger) *Counter {
	return &Counter{
		store: store,
		now:   now,
		logl:  logex.Levels(logger),
	}
}

func (c *Counter) Visit(ctx context.Context, ip net.IP) (*VisitResult, error) {
	if ip == nil {
		return nil, ErrMissingVisitorIp
	}

	now := c.now()
	visitorId := VisitorId(ip)

	visitor, err := c.store.GetItem(ctx, visitorId)
	if err != nil {
		return nil, err
	}

	if visitor != nil && c.withinCooldown(*visitor, now) {
		count, err := c.Count(ctx)
		if err != nil {
			return nil, err
		}

		return &VisitResult{Count: count, Counted: false}, nil
	}

	count, err := c.store.IncrementCount(ctx, vcstore.CounterId, 1)
	if err != nil {
		return nil, err
	}

	// not atomic with the increment. if we die in between, this visitor gets counted again
	// before its cooldown window would have ended.
	if err := c.store.PutItem(ctx, vcstore.Item{
		Id:        visitorId,
		LastVisit: vcstore.FormatLastVisit(now),
	}); err != nil {
		return nil, err
	}

	c.logl.Debug.Printf("counted %s => %d", visitorId, count)

	return &VisitResult{Count: count, Counted: true}, nil
}

// current count without counting anyone. 0 if nobody has visited yet.
func (c *Counter) Count(ctx context.Context) (int64, error) {
	counter, err := c.store.GetItem(ctx, vcstore.CounterId)
	if err != nil {
		return 0, err
	}

	if counter == nil {
		return 0, nil
	}

	return counter.Count, nil
}

func (c *Counter) withinCooldown(visitor vcstore.Item, now time.Time) bool {
	if visitor.LastVisit == "" {
		return false
	}

	lastVisit, err := vcstore.ParseLastVisit(visitor.LastVisit)
	if err != nil {
		// next counted visit overwrites the garbage
		c.logl.Error.Printf("%s: %v", visitor.Id, err)
		return false
	}

	return now.Sub(lastVisit) < CooldownWindow
}
