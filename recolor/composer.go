package recolor

import (
	"fmt"
	"sync"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/remap"
)

// Snapshot is the result of composing a tree.
type Snapshot struct {
	// Table is the merge of every active recoloring in tree order
	Table remap.Table

	// Claimed marks the indices separated by an active recoloring
	Claimed [remap.Size]bool

	// Version increases with every recomposition
	Version uint64
}

// Composer tracks the selection state of a tree and publishes the composed
// recoloring whenever it changes. It is safe for concurrent use.
type Composer struct {
	mu sync.Mutex

	root     *Node
	climate  palette.Climate
	selected map[*Node]*Node

	current Snapshot

	observers map[int]func()
	nextID    int
}

// NewComposer returns a Composer for root. Every choice starts with its
// first child available in climate selected.
func NewComposer(root *Node, climate palette.Climate) *Composer {
	c := &Composer{
		root:      root,
		climate:   climate,
		selected:  make(map[*Node]*Node),
		observers: make(map[int]func()),
	}
	c.fixSelection()
	c.compose()
	return c
}

// Any choice whose selected child is unavailable in the current climate
// falls back to its first available child
func (c *Composer) fixSelection() {
	c.root.Walk(func(n *Node, _ int) bool {
		if n.Kind != Choice {
			return true
		}
		if sel, ok := c.selected[n]; ok && sel.Enabled(c.climate) {
			return true
		}
		for _, child := range n.Children {
			if child.Enabled(c.climate) {
				c.selected[n] = child
				break
			}
		}
		return true
	})
}

func (c *Composer) compose() {
	var (
		tables  []remap.Table
		claimed [remap.Size]bool
		visit   func(*Node)
	)

	// Climates only restrict which child a choice may contribute
	visit = func(n *Node) {
		switch n.Kind {
		case Recolor:
			tables = append(tables, n.Table)
			for _, i := range n.Separate {
				if i >= 0 && i < remap.Size {
					claimed[i] = true
				}
			}
		case Sequence:
			for _, child := range n.Children {
				visit(child)
			}
		case Choice:
			if sel := c.selected[n]; sel != nil && sel.Enabled(c.climate) {
				visit(sel)
			}
		}
	}
	visit(c.root)

	c.current = Snapshot{
		Table:   remap.Merge(tables...),
		Claimed: claimed,
		Version: c.current.Version + 1,
	}
}

// Must be called with the lock held
func (c *Composer) observerList() []func() {
	fns := make([]func(), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	return fns
}

// Root returns the tree being composed.
func (c *Composer) Root() *Node {
	return c.root
}

// Climate returns the current climate.
func (c *Composer) Climate() palette.Climate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.climate
}

// SetClimate changes the climate, fixes up any choice whose selection is no
// longer available and recomposes.
func (c *Composer) SetClimate(climate palette.Climate) {
	c.mu.Lock()
	if climate == c.climate {
		c.mu.Unlock()
		return
	}
	c.climate = climate
	c.fixSelection()
	c.compose()
	fns := c.observerList()
	c.mu.Unlock()
	notify(fns)
}

func (c *Composer) findChoice(name string) (*Node, error) {
	n := c.root.Find(Choice, name)
	if n == nil {
		return nil, fmt.Errorf("recolor: no choice named %q", name)
	}
	return n, nil
}

// Select makes the child named child the active one of the choice named
// choice and recomposes.
func (c *Composer) Select(choice, child string) error {
	n, err := c.findChoice(choice)
	if err != nil {
		return err
	}

	var sel *Node
	for _, ch := range n.Children {
		if ch.Name == child {
			sel = ch
			break
		}
	}
	if sel == nil {
		return fmt.Errorf("recolor: choice %q has no child named %q", choice, child)
	}

	c.mu.Lock()
	if !sel.Enabled(c.climate) {
		climate := c.climate
		c.mu.Unlock()
		return fmt.Errorf("recolor: %q is not available in %s", child, climate)
	}
	c.selected[n] = sel
	c.compose()
	fns := c.observerList()
	c.mu.Unlock()
	notify(fns)

	return nil
}

// Selected returns the name of the active child of the choice named choice.
func (c *Composer) Selected(choice string) (string, error) {
	n, err := c.findChoice(choice)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if sel := c.selected[n]; sel != nil {
		return sel.Name, nil
	}
	return "", nil
}

// IsSelected reports whether n is the active child of its choice. Children
// of sequences are always selected.
func (c *Composer) IsSelected(parent, n *Node) bool {
	if parent == nil || parent.Kind != Choice {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected[parent] == n
}

// Snapshot returns the current composition.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Effective returns the current composed recoloring.
func (c *Composer) Effective() remap.Table {
	return c.Snapshot().Table
}

// Claimed returns the indices separated by the current selection.
func (c *Composer) Claimed() [remap.Size]bool {
	return c.Snapshot().Claimed
}

// Version returns the number of compositions so far.
func (c *Composer) Version() uint64 {
	return c.Snapshot().Version
}

// OnChange registers fn to be called after every recomposition. fn is called
// without any lock held. The returned function unregisters it.
func (c *Composer) OnChange(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
