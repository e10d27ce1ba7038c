package navigator

import (
	"errors"

	"github.com/angelmondragon/catalogcart/internal/catalog"
)

var (
	ErrUnknownCategory = errors.New("category is not part of this menu")
	ErrNotExpandable   = errors.New("category has no sublevels")
	ErrNotVisible      = errors.New("category is hidden under a collapsed parent")
)

// MenuNode is one visible row of the rendered menu.
type MenuNode struct {
	ID         int               `json:"id"`
	Name       string            `json:"name"`
	Expandable bool              `json:"expandable"`
	Expanded   bool              `json:"expanded"`
	Selected   bool              `json:"selected"`
	Children   []MenuNode        `json:"children,omitempty"`
	Category   *catalog.Category `json:"-"`
}

// Option configures a Navigator.
type Option func(*Navigator)

// OnSelect registers a listener invoked whenever the active category changes.
func OnSelect(fn func(*catalog.Category)) Option {
	return func(n *Navigator) {
		n.onSelect = fn
	}
}

// Navigator tracks per-node expansion and the single active category shared by every depth.
// Nodes are identified by reference, never by id.
type Navigator struct {
	roots    []*catalog.Category
	parent   map[*catalog.Category]*catalog.Category
	expanded map[*catalog.Category]bool
	selected *catalog.Category
	onSelect func(*catalog.Category)
}

func New(roots []*catalog.Category, opts ...Option) *Navigator {
	n := &Navigator{
		roots:    roots,
		parent:   map[*catalog.Category]*catalog.Category{},
		expanded: map[*catalog.Category]bool{},
	}
	n.indexParents(nil, roots)
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Navigator) indexParents(parent *catalog.Category, nodes []*catalog.Category) {
	for _, node := range nodes {
		n.parent[node] = parent
		n.indexParents(node, node.Sublevels)
	}
}

// Selected returns the active category, nil when nothing is selected.
func (n *Navigator) Selected() *catalog.Category {
	return n.selected
}

// Select sets the active category; nil clears it. Listeners fire only on change.
func (n *Navigator) Select(category *catalog.Category) {
	if n.selected == category {
		return
	}
	n.selected = category
	if n.onSelect != nil {
		n.onSelect(category)
	}
}

// ClickLabel selects the node without touching its expansion.
func (n *Navigator) ClickLabel(node *catalog.Category) error {
	if _, ok := n.parent[node]; !ok {
		return ErrUnknownCategory
	}
	n.Select(node)
	return nil
}

// ToggleExpand flips the node's expanded flag and reports the new state. Collapsing an
// expanded node clears the active selection and forgets the expansion of its subtree.
func (n *Navigator) ToggleExpand(node *catalog.Category) (bool, error) {
	if _, ok := n.parent[node]; !ok {
		return false, ErrUnknownCategory
	}
	if !node.HasChildren() {
		return false, ErrNotExpandable
	}
	if !n.visible(node) {
		return false, ErrNotVisible
	}

	if n.expanded[node] {
		n.Select(nil)
		n.collapse(node)
		return false, nil
	}
	n.expanded[node] = true
	return true, nil
}

// IsExpanded reports the node's own flag.
func (n *Navigator) IsExpanded(node *catalog.Category) bool {
	return n.expanded[node]
}

func (n *Navigator) collapse(node *catalog.Category) {
	delete(n.expanded, node)
	for _, child := range node.Sublevels {
		n.collapse(child)
	}
}

func (n *Navigator) visible(node *catalog.Category) bool {
	for p := n.parent[node]; p != nil; p = n.parent[p] {
		if !n.expanded[p] {
			return false
		}
	}
	return true
}

// Render returns the currently visible menu.
func (n *Navigator) Render() []MenuNode {
	return n.render(n.roots)
}

func (n *Navigator) render(nodes []*catalog.Category) []MenuNode {
	out := make([]MenuNode, 0, len(nodes))
	for _, node := range nodes {
		item := MenuNode{
			ID:         node.ID,
			Name:       node.Name,
			Expandable: node.HasChildren(),
			Expanded:   n.expanded[node],
			Selected:   node == n.selected,
			Category:   node,
		}
		if item.Expandable && item.Expanded {
			item.Children = n.render(node.Sublevels)
		}
		out = append(out, item)
	}
	return out
}
