package basket

import (
	"testing"

	"egg/internal/refs"
)

// node is a minimal refs.Collectable for basket tests.
type node struct {
	name  string
	root  bool
	tag   refs.BasketTag
	links []*node
}

func (n *node) SoftIsRoot() bool { return n.root }
func (n *node) SoftVisitLinks(visit refs.Visitor) {
	for _, l := range n.links {
		visit(l)
	}
}
func (n *node) SoftGetBasket() refs.BasketTag { return n.tag }
func (n *node) SoftSetBasket(tag refs.BasketTag) refs.BasketTag {
	prev := n.tag
	n.tag = tag
	return prev
}

func TestTakeDrop(t *testing.T) {
	b := New()
	n := &node{name: "a", root: true}
	if err := b.Take(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 owned, got %d", b.Len())
	}
	b.Drop(n)
	if b.Len() != 0 {
		t.Fatalf("expected 0 owned after drop, got %d", b.Len())
	}
}

func TestTakeViolationAcrossBaskets(t *testing.T) {
	b1, b2 := New(), New()
	n := &node{name: "a"}
	if err := b1.Take(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b2.Take(n); err == nil {
		t.Fatalf("expected a violation taking an already-owned collectable into another basket")
	}
}

func TestCollectDropsUnreachable(t *testing.T) {
	b := New()
	root := &node{name: "root", root: true}
	reachable := &node{name: "reachable"}
	unreachable := &node{name: "unreachable"}
	root.links = []*node{reachable}

	for _, n := range []*node{root, reachable, unreachable} {
		if err := b.Take(n); err != nil {
			t.Fatalf("take failed: %v", err)
		}
	}
	dropped := b.Collect()
	if dropped != 1 {
		t.Fatalf("expected 1 collected, got %d", dropped)
	}
	if b.Len() != 2 {
		t.Fatalf("expected 2 remaining, got %d", b.Len())
	}
	if unreachable.SoftGetBasket() != nil {
		t.Fatalf("expected unreachable node to be dropped from its basket")
	}
}

func TestCollectHandlesCycles(t *testing.T) {
	b := New()
	root := &node{name: "root", root: true}
	a := &node{name: "a"}
	c := &node{name: "c"}
	a.links = []*node{c}
	c.links = []*node{a} // cycle, but unreachable from root
	root.links = nil

	for _, n := range []*node{root, a, c} {
		if err := b.Take(n); err != nil {
			t.Fatalf("take failed: %v", err)
		}
	}
	dropped := b.Collect()
	if dropped != 2 {
		t.Fatalf("expected the a<->c cycle (2 nodes) to be collected, got %d", dropped)
	}
}

func TestPurge(t *testing.T) {
	b := New()
	for i := 0; i < 3; i++ {
		if err := b.Take(&node{name: "n"}); err != nil {
			t.Fatalf("take failed: %v", err)
		}
	}
	if purged := b.Purge(); purged != 3 {
		t.Fatalf("expected 3 purged, got %d", purged)
	}
	if b.Len() != 0 {
		t.Fatalf("expected basket empty after purge")
	}
}
