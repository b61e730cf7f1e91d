package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("Home & Garden", "")
	require.NoError(t, err)

	assert.Equal(t, "home-garden", c.Slug)
	assert.Equal(t, c.ID.String(), c.Path)
	assert.Equal(t, 0, c.Level)
	assert.True(t, c.IsRoot())
	assert.True(t, c.IsActive)

	_, err = NewCategory("", "x")
	assert.Error(t, err)
}

func TestNewChildCategory(t *testing.T) {
	root, err := NewCategory("Clothing", "clothing")
	require.NoError(t, err)

	child, err := NewChildCategory("Shirts", "", root)
	require.NoError(t, err)

	assert.Equal(t, &root.ID, child.ParentID)
	assert.Equal(t, 1, child.Level)
	assert.Equal(t, root.Path+"/"+child.ID.String(), child.Path)
	assert.True(t, root.IsAncestorOf(child))
	assert.True(t, child.IsDescendantOf(root))
	assert.Equal(t, []uuid.UUID{root.ID}, child.GetAncestorIDs())

	t.Run("depth limit", func(t *testing.T) {
		parent := root
		for i := 1; i < MaxCategoryDepth; i++ {
			parent, err = NewChildCategory("Level", "", parent)
			require.NoError(t, err)
		}
		_, err = NewChildCategory("Too deep", "", parent)
		assert.Error(t, err)
	})
}

func TestCategory_MoveTo(t *testing.T) {
	a, _ := NewCategory("A", "")
	b, _ := NewCategory("B", "")
	child, _ := NewChildCategory("A1", "", a)

	t.Run("cannot move under own descendant", func(t *testing.T) {
		_, _, err := a.MoveTo(child, 1)
		assert.Error(t, err)
		_, _, err = a.MoveTo(a, 0)
		assert.Error(t, err)
	})

	t.Run("move subtree under another root", func(t *testing.T) {
		oldPath, delta, err := a.MoveTo(b, 1)
		require.NoError(t, err)
		assert.Equal(t, a.ID.String(), oldPath)
		assert.Equal(t, 1, delta)
		assert.Equal(t, b.Path+"/"+a.ID.String(), a.Path)
	})

	t.Run("move back to root", func(t *testing.T) {
		_, delta, err := a.MoveTo(nil, 1)
		require.NoError(t, err)
		assert.Equal(t, -1, delta)
		assert.True(t, a.IsRoot())
	})
}
