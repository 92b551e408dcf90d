package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adewale/olsen/pkg/models"
)

func TestReplaceGroupsAssignsMembershipAndSOT(t *testing.T) {
	c := openTestCatalog(t)
	sourceID, err := c.AddSource("/photos")
	require.NoError(t, err)

	tx, err := c.Begin()
	require.NoError(t, err)
	rec1 := testRecord("/photos/a.jpg")
	rec2 := testRecord("/photos/b.jpg")
	require.NoError(t, c.UpsertPhoto(tx, sourceID, rec1))
	require.NoError(t, c.UpsertPhoto(tx, sourceID, rec2))
	require.NoError(t, tx.Commit())

	photos, err := c.AllPhotos()
	require.NoError(t, err)
	require.Len(t, photos, 2)

	group := models.DuplicateGroup{
		Confidence:    models.ConfidenceCertain,
		Members:       []int64{photos[0].ID, photos[1].ID},
		SourceOfTruth: photos[0].ID,
	}
	require.NoError(t, c.ReplaceGroups([]models.DuplicateGroup{group}))

	groups, err := c.ListGroups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, photos[0].ID, groups[0].SourceOfTruth)
	assert.ElementsMatch(t, []int64{photos[0].ID, photos[1].ID}, groups[0].Members)

	byGroup, err := c.PhotosByGroup(groups[0].ID)
	require.NoError(t, err)
	assert.Len(t, byGroup, 2)
}

func TestReplaceGroupsDiscardsPriorState(t *testing.T) {
	c := openTestCatalog(t)
	sourceID, err := c.AddSource("/photos")
	require.NoError(t, err)

	tx, err := c.Begin()
	require.NoError(t, err)
	rec1 := testRecord("/photos/a.jpg")
	rec2 := testRecord("/photos/b.jpg")
	require.NoError(t, c.UpsertPhoto(tx, sourceID, rec1))
	require.NoError(t, c.UpsertPhoto(tx, sourceID, rec2))
	require.NoError(t, tx.Commit())

	photos, err := c.AllPhotos()
	require.NoError(t, err)

	first := models.DuplicateGroup{
		Confidence: models.ConfidenceCertain,
		Members:    []int64{photos[0].ID, photos[1].ID},
	}
	require.NoError(t, c.ReplaceGroups([]models.DuplicateGroup{first}))

	// Rebuilding with no groups must clear the prior assignment entirely.
	require.NoError(t, c.ReplaceGroups(nil))

	groups, err := c.ListGroups()
	require.NoError(t, err)
	assert.Empty(t, groups)

	photos, err = c.AllPhotos()
	require.NoError(t, err)
	for _, p := range photos {
		assert.False(t, p.HasGroup)
	}
}
