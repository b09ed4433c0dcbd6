/*
Package recolor loads trees of selectable recolorings and composes the
currently selected ones into a single remap.Table.

A tree is built from three kinds of node. A Recolor leaf carries one
recoloring plus the indices it separates from the main palette. A Sequence
activates all of its children and a Choice exactly one of them. Every node
can be restricted to a set of climates.
*/
package recolor

import (
	"strings"

	"github.com/bodgit/ttdviewer/palette"
	"github.com/bodgit/ttdviewer/remap"
)

// Kind is the type of a Node.
type Kind int

// The node kinds
const (
	Recolor Kind = iota
	Sequence
	Choice
)

func (k Kind) String() string {
	switch k {
	case Recolor:
		return "recolor"
	case Sequence:
		return "sequence"
	case Choice:
		return "choice"
	}
	return "unknown"
}

// Node is an element of a recoloring tree.
type Node struct {
	Kind        Kind
	Name        string
	Description string

	// Climates the node is available in
	Climates [palette.NumClimates]bool

	// Sprite is the number of the game sprite holding the recoloring, or
	// -1 if there isn't one
	Sprite int

	// Table is the recoloring of a Recolor leaf
	Table remap.Table

	// Separate are the indices a Recolor leaf claims from the main palette
	Separate []int

	Children []*Node
}

// Enabled reports whether n is available in climate c.
func (n *Node) Enabled(c palette.Climate) bool {
	return c >= 0 && c < palette.NumClimates && n.Climates[c]
}

// Walk calls fn for n and every node below it, depth first, along with its
// depth in the tree. Returning false from fn skips the children of a node.
func (n *Node) Walk(fn func(*Node, int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Find returns the first node of kind k named name, or nil.
func (n *Node) Find(k Kind, name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Kind == k && strings.EqualFold(node.Name, name) {
			found = node
			return false
		}
		return true
	})
	return found
}
