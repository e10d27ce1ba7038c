package navigator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalogcart/internal/catalog"
)

type tree struct {
	roots       []*catalog.Category
	drinks      *catalog.Category
	soft        *catalog.Category
	sparkling   *catalog.Category
	emptyLeaf   *catalog.Category
	missingLeaf *catalog.Category
}

func newTree() tree {
	sparkling := &catalog.Category{ID: 3, Name: "Sparkling"}
	soft := &catalog.Category{ID: 2, Name: "Soft", Sublevels: []*catalog.Category{sparkling}}
	drinks := &catalog.Category{ID: 1, Name: "Drinks", Sublevels: []*catalog.Category{soft}}
	emptyLeaf := &catalog.Category{ID: 4, Name: "Coffee", Sublevels: []*catalog.Category{}}
	missingLeaf := &catalog.Category{ID: 5, Name: "Deals"}
	return tree{
		roots:       []*catalog.Category{drinks, emptyLeaf, missingLeaf},
		drinks:      drinks,
		soft:        soft,
		sparkling:   sparkling,
		emptyLeaf:   emptyLeaf,
		missingLeaf: missingLeaf,
	}
}

func TestRenderStartsCollapsed(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	menu := nav.Render()
	require.Len(t, menu, 3)
	assert.True(t, menu[0].Expandable)
	assert.False(t, menu[0].Expanded)
	assert.Empty(t, menu[0].Children)
	assert.Nil(t, nav.Selected())
}

func TestEmptyAndAbsentSublevelsAreBothLeaves(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	menu := nav.Render()
	assert.False(t, menu[1].Expandable, "empty sublevels show no expand control")
	assert.False(t, menu[2].Expandable, "absent sublevels show no expand control")

	_, err := nav.ToggleExpand(tr.emptyLeaf)
	assert.ErrorIs(t, err, ErrNotExpandable)
	_, err = nav.ToggleExpand(tr.missingLeaf)
	assert.ErrorIs(t, err, ErrNotExpandable)
}

func TestToggleExpandRendersNestedLevelWithSharedSelection(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	expanded, err := nav.ToggleExpand(tr.drinks)
	require.NoError(t, err)
	assert.True(t, expanded)
	_, err = nav.ToggleExpand(tr.soft)
	require.NoError(t, err)

	require.NoError(t, nav.ClickLabel(tr.sparkling))
	assert.Same(t, tr.sparkling, nav.Selected())

	menu := nav.Render()
	require.Len(t, menu[0].Children, 1)
	require.Len(t, menu[0].Children[0].Children, 1)
	assert.True(t, menu[0].Children[0].Children[0].Selected)
	assert.False(t, menu[0].Selected)
}

func TestClickLabelDoesNotChangeExpansion(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	require.NoError(t, nav.ClickLabel(tr.drinks))
	assert.Same(t, tr.drinks, nav.Selected())
	assert.False(t, nav.IsExpanded(tr.drinks))

	_, err := nav.ToggleExpand(tr.drinks)
	require.NoError(t, err)
	require.NoError(t, nav.ClickLabel(tr.soft))
	assert.True(t, nav.IsExpanded(tr.drinks))
	assert.False(t, nav.IsExpanded(tr.soft))

	assert.ErrorIs(t, nav.ClickLabel(&catalog.Category{ID: 1}), ErrUnknownCategory)
}

func TestCollapseClearsSelection(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	_, err := nav.ToggleExpand(tr.drinks)
	require.NoError(t, err)
	require.NoError(t, nav.ClickLabel(tr.missingLeaf))
	require.NotNil(t, nav.Selected())

	expanded, err := nav.ToggleExpand(tr.drinks)
	require.NoError(t, err)
	assert.False(t, expanded)
	assert.Nil(t, nav.Selected(), "collapsing resets the selection, even of an unrelated node")
}

func TestExpandDoesNotClearSelection(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	nav.Select(tr.missingLeaf)
	_, err := nav.ToggleExpand(tr.drinks)
	require.NoError(t, err)
	assert.Same(t, tr.missingLeaf, nav.Selected())
}

func TestCollapseForgetsSubtreeExpansion(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	_, _ = nav.ToggleExpand(tr.drinks)
	_, _ = nav.ToggleExpand(tr.soft)
	require.True(t, nav.IsExpanded(tr.soft))

	_, _ = nav.ToggleExpand(tr.drinks)
	_, _ = nav.ToggleExpand(tr.drinks)

	assert.False(t, nav.IsExpanded(tr.soft))
	menu := nav.Render()
	require.Len(t, menu[0].Children, 1)
	assert.Empty(t, menu[0].Children[0].Children)
}

func TestToggleHiddenOrUnknownNode(t *testing.T) {
	tr := newTree()
	nav := New(tr.roots)

	_, err := nav.ToggleExpand(tr.soft)
	assert.ErrorIs(t, err, ErrNotVisible)

	_, err = nav.ToggleExpand(&catalog.Category{ID: 2, Sublevels: []*catalog.Category{{ID: 9}}})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestOnSelectFiresOnChangeOnly(t *testing.T) {
	tr := newTree()
	var seen []*catalog.Category
	nav := New(tr.roots, OnSelect(func(c *catalog.Category) { seen = append(seen, c) }))

	nav.Select(tr.drinks)
	nav.Select(tr.drinks)
	_, _ = nav.ToggleExpand(tr.drinks)
	_, _ = nav.ToggleExpand(tr.drinks)
	nav.Select(nil)

	require.Len(t, seen, 2)
	assert.Same(t, tr.drinks, seen[0])
	assert.Nil(t, seen[1])
}
