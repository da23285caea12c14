// Package basket implements the mark-and-sweep cycle collector that owns
// soft-referenced object graphs (spec component D).
package basket

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"egg/internal/refs"
)

// Basket owns a set of collectables and can mark-and-sweep unreachable ones
// starting from whichever are flagged as roots (spec §3.6, §4.3).
//
// A Basket is single-threaded (spec §5): concurrent Take/Drop/Collect calls
// from multiple goroutines on the same Basket are a contract violation, same
// as the original's "TODO thread safety" in basket.cpp.
type Basket struct {
	id    uuid.UUID
	owned map[refs.Collectable]struct{}
}

// New creates an empty basket with a fresh correlation id (surfaced in
// diagnostics when multiple programs run concurrently, spec §5).
func New() *Basket {
	return &Basket{id: uuid.New(), owned: make(map[refs.Collectable]struct{})}
}

// ID returns this basket's correlation id.
func (b *Basket) ID() uuid.UUID {
	return b.id
}

// IsBasketTag satisfies refs.BasketTag.
func (b *Basket) IsBasketTag() {}

// ErrBasketViolation is returned when a collectable already owned by a
// different basket is handed to Take (spec §3.6: "an error unless A is
// None").
var ErrBasketViolation = errors.New("basket: cannot take a collectable owned by a different basket")

// Take adds c to the owned set and records this basket as c's owner; it
// does not acquire a hard reference to c. Per spec
// §4.3's ownership transition table: if c is already owned by this basket,
// Take is a no-op (Unaltered); if c is unowned, this basket takes it
// (Altered); if c is owned by a *different* basket, Take fails
// (ErrBasketViolation).
func (b *Basket) Take(c refs.Collectable) error {
	previous := c.SoftGetBasket()
	if previous == b {
		return nil
	}
	if previous != nil {
		return errors.Wrapf(ErrBasketViolation, "collectable already owned by basket %s", tagID(previous))
	}
	c.SoftSetBasket(b)
	b.owned[c] = struct{}{}
	return nil
}

// Drop removes c from the owned set. It is a no-op if c is not owned by this
// basket.
func (b *Basket) Drop(c refs.Collectable) {
	if c.SoftGetBasket() != b {
		return
	}
	c.SoftSetBasket(nil)
	delete(b.owned, c)
}

// Collect runs mark-and-sweep: every owned root is pushed onto a work stack;
// everything reachable via SoftVisitLinks is marked reachable; everything
// left over is dropped. Returns the number of collectables dropped. Mirrors
// cpp/ovum/basket.cpp's collect() pseudocode referenced by spec §4.3.
func (b *Basket) Collect() int {
	var pending []refs.Collectable
	unreachable := make(map[refs.Collectable]struct{}, len(b.owned))
	for c := range b.owned {
		if c.SoftIsRoot() {
			pending = append(pending, c)
		} else {
			unreachable[c] = struct{}{}
		}
	}
	for len(pending) > 0 {
		n := len(pending) - 1
		c := pending[n]
		pending = pending[:n]
		c.SoftVisitLinks(func(target refs.Collectable) {
			if _, found := unreachable[target]; found {
				delete(unreachable, target)
				pending = append(pending, target)
			}
		})
	}
	for c := range unreachable {
		b.Drop(c)
	}
	return len(unreachable)
}

// Purge drops every owned collectable unconditionally, for teardown (spec
// §3.6). Returns the number purged.
func (b *Basket) Purge() int {
	purged := 0
	for c := range b.owned {
		b.Drop(c)
		purged++
	}
	return purged
}

// Len reports how many collectables this basket currently owns.
func (b *Basket) Len() int {
	return len(b.owned)
}

// Statistics mirrors cpp/ovum/basket.cpp's statistics() override, reporting
// owned-object count (bytes are not tracked at this layer; see
// internal/memory.Allocator for byte-level accounting).
func (b *Basket) Statistics() string {
	return fmt.Sprintf("basket %s: %d collectables owned", b.id, len(b.owned))
}

func tagID(tag refs.BasketTag) string {
	if bk, ok := tag.(*Basket); ok {
		return bk.id.String()
	}
	return "?"
}
