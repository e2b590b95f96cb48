// Package reconcile maps an ordered list of content items onto the repeated elements of a
// template, reusing existing elements where possible so that hydrated markup keeps the
// structure and attributes the designers authored.
package reconcile

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lordwhitefire/new-portfolio/internal/dom"
)

// Deficit decides what happens to slots that no item maps to.
type Deficit int

const (
	// Remove detaches surplus slots from the document.
	Remove Deficit = iota
	// Hide keeps surplus slots but suppresses their display.
	Hide
)

// String implements fmt.Stringer.
func (d Deficit) String() string {
	if d == Hide {
		return "hide"
	}
	return "remove"
}

// List describes one repeated region of a template.
type List[T any] struct {
	// Parent receives slots built by Create. When empty, created slots are appended to the
	// parent of the last existing slot instead.
	Parent *goquery.Selection
	// Slots are the existing repeated elements, in document order.
	Slots *goquery.Selection
	// Key returns an item's natural key. A nil Key reconciles by position.
	Key func(T) string
	// SlotKey returns the key an existing slot represents; required when Key is set.
	SlotKey func(*goquery.Selection) string
	// Create builds an empty slot for an item with no counterpart. A nil Create means
	// surplus items are dropped.
	Create func(T) *goquery.Selection
	// Render writes an item into a slot, overwriting every field it owns.
	Render func(slot *goquery.Selection, item T)
	// Deficit applies to slots left without an item.
	Deficit Deficit
}

// Result counts what a reconciliation did.
type Result struct {
	Reused  int
	Created int
	Removed int
	Hidden  int
	Dropped int
}

// Apply reconciles items against the list. Reused slots keep their node identity.
func Apply[T any](items []T, list List[T]) Result {
	if list.Key != nil && list.SlotKey != nil {
		return applyKeyed(items, list)
	}
	return applyPositional(items, list)
}

func applyPositional[T any](items []T, list List[T]) Result {
	var res Result
	slots := nodesOf(list.Slots)
	for i, item := range items {
		if i < len(slots) {
			slot := selectionOf(list.Slots, slots[i])
			list.reuse(slot, item)
			res.Reused++
			continue
		}
		if list.create(item, lastAttached(slots), nil) {
			res.Created++
		} else {
			res.Dropped++
		}
	}
	for _, n := range surplus(slots, len(items)) {
		list.retire(selectionOf(list.Slots, n), &res)
	}
	return res
}

func applyKeyed[T any](items []T, list List[T]) Result {
	var res Result
	slots := nodesOf(list.Slots)
	byKey := make(map[string]*html.Node, len(slots))
	for _, n := range slots {
		key := list.SlotKey(selectionOf(list.Slots, n))
		if key == "" {
			continue
		}
		if _, dup := byKey[key]; !dup {
			byKey[key] = n
		}
	}

	used := make(map[*html.Node]bool, len(items))
	matched := make([]*html.Node, len(items))
	for i, item := range items {
		if n, ok := byKey[list.Key(item)]; ok && !used[n] {
			used[n] = true
			matched[i] = n
		}
	}

	var anchor *html.Node
	if len(slots) > 0 {
		anchor = slots[len(slots)-1]
	}
	// A created slot goes before the next reused slot in item order, so new entries land
	// where the data puts them rather than after every existing slot.
	next := make([]*html.Node, len(items))
	var following *html.Node
	for i := len(items) - 1; i >= 0; i-- {
		next[i] = following
		if matched[i] != nil {
			following = matched[i]
		}
	}
	for i, item := range items {
		if n := matched[i]; n != nil {
			list.reuse(selectionOf(list.Slots, n), item)
			res.Reused++
			continue
		}
		if list.create(item, anchor, next[i]) {
			res.Created++
		} else {
			res.Dropped++
		}
	}
	for _, n := range slots {
		if !used[n] {
			list.retire(selectionOf(list.Slots, n), &res)
		}
	}
	return res
}

func (l List[T]) reuse(slot *goquery.Selection, item T) {
	if l.Deficit == Hide && dom.IsHidden(slot) {
		dom.Show(slot)
	}
	if l.Render != nil {
		l.Render(slot, item)
	}
}

// create builds a slot and attaches it before the given sibling when one is set, otherwise
// to Parent, or next to anchor when no Parent is set.
func (l List[T]) create(item T, anchor, before *html.Node) bool {
	if l.Create == nil {
		return false
	}
	slot := l.Create(item)
	if slot == nil || slot.Length() == 0 {
		return false
	}
	switch {
	case before != nil && before.Parent != nil && l.accepts(before.Parent):
		for _, n := range slot.Nodes {
			before.Parent.InsertBefore(n, before)
		}
	case l.Parent != nil && l.Parent.Length() > 0:
		l.Parent.First().AppendSelection(slot)
	case anchor != nil && anchor.Parent != nil:
		for _, n := range slot.Nodes {
			anchor.Parent.AppendChild(n)
		}
	default:
		return false
	}
	if l.Render != nil {
		l.Render(slot, item)
	}
	return true
}

// accepts reports whether created slots may be placed under parent.
func (l List[T]) accepts(parent *html.Node) bool {
	if l.Parent == nil || l.Parent.Length() == 0 {
		return true
	}
	return l.Parent.Nodes[0] == parent
}

func (l List[T]) retire(slot *goquery.Selection, res *Result) {
	if l.Deficit == Hide {
		dom.Hide(slot)
		res.Hidden++
		return
	}
	slot.Remove()
	res.Removed++
}

func nodesOf(sel *goquery.Selection) []*html.Node {
	if sel == nil {
		return nil
	}
	out := make([]*html.Node, len(sel.Nodes))
	copy(out, sel.Nodes)
	return out
}

// selectionOf wraps a single slot node while keeping the owning document.
func selectionOf(slots *goquery.Selection, n *html.Node) *goquery.Selection {
	return slots.FilterNodes(n)
}

func surplus(slots []*html.Node, used int) []*html.Node {
	if used >= len(slots) {
		return nil
	}
	return slots[used:]
}

func lastAttached(slots []*html.Node) *html.Node {
	if len(slots) == 0 {
		return nil
	}
	return slots[len(slots)-1]
}
