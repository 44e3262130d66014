package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRows_CarryForward(t *testing.T) {
	rows := []Record{
		{"Handle": "A", "Variant SKU": "S1"},
		{"Handle": "", "Variant SKU": "S2"},
		{"Handle": "B", "Variant SKU": "S3"},
	}

	groups := GroupRows(rows, "Handle")

	require.Equal(t, 2, groups.Len())
	assert.Equal(t, "A", groups.Items[0].Key)
	assert.Equal(t, []Record{rows[0], rows[1]}, groups.Items[0].Rows)
	assert.Equal(t, "B", groups.Items[1].Key)
	assert.Equal(t, []Record{rows[2]}, groups.Items[1].Rows)
	assert.Zero(t, groups.Dropped)
}

func TestGroupRows_MissingKeyColumnInherits(t *testing.T) {
	rows := []Record{
		{"Handle": "shirt", "Variant SKU": "S1"},
		{"Variant SKU": "S2"},
	}

	groups := GroupRows(rows, "Handle")

	require.Equal(t, 1, groups.Len())
	assert.Len(t, groups.Items[0].Rows, 2)
}

func TestGroupRows_LeadingBlankDropped(t *testing.T) {
	rows := []Record{
		{"Handle": "", "Variant SKU": "orphan-1"},
		{"Variant SKU": "orphan-2"},
		{"Handle": "A", "Variant SKU": "S1"},
	}

	groups := GroupRows(rows, "Handle")

	require.Equal(t, 1, groups.Len())
	assert.Equal(t, "A", groups.Items[0].Key)
	assert.Equal(t, 2, groups.Dropped)
}

func TestGroupRows_EmptyInput(t *testing.T) {
	groups := GroupRows(nil, "Handle")

	assert.Zero(t, groups.Len())
	assert.Zero(t, groups.Dropped)
	assert.Empty(t, groups.Flatten())
}

func TestGroupRows_KeyIsTrimmed(t *testing.T) {
	rows := []Record{
		{"Handle": "  dress  "},
		{"Handle": "dress"},
	}

	groups := GroupRows(rows, "Handle")

	require.Equal(t, 1, groups.Len())
	assert.Equal(t, "dress", groups.Items[0].Key)
	assert.Len(t, groups.Items[0].Rows, 2)
}

func TestGroupRows_RepeatedKeyAppendsToFirstGroup(t *testing.T) {
	rows := []Record{
		{"Handle": "A", "n": "1"},
		{"Handle": "B", "n": "2"},
		{"Handle": "A", "n": "3"},
		{"Handle": "", "n": "4"},
	}

	groups := GroupRows(rows, "Handle")

	require.Equal(t, 2, groups.Len())
	assert.Equal(t, []string{"1", "3", "4"}, column(groups.Items[0].Rows, "n"))
	assert.Equal(t, []string{"2"}, column(groups.Items[1].Rows, "n"))
}

func TestGroupRows_FlattenPreservesMultiset(t *testing.T) {
	inputs := [][]Record{
		{},
		{{"Handle": "A"}},
		{{"Handle": "A"}, {"Handle": ""}, {"Handle": "B"}, {"Handle": ""}, {"Handle": "A"}},
		{{"Handle": "X"}, {"Handle": "Y"}, {"Handle": "Z"}, {"Handle": "Y"}, {}, {"Handle": "X"}},
	}

	for i, rows := range inputs {
		// Tag each row so identical-looking rows stay distinguishable.
		for j := range rows {
			rows[j]["row"] = fmt.Sprint(j)
		}

		t.Run(fmt.Sprint(i), func(t *testing.T) {
			groups := GroupRows(rows, "Handle")
			assert.ElementsMatch(t, column(rows, "row"), column(groups.Flatten(), "row"))
		})
	}
}

func column(rows []Record, name string) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r[name])
	}
	return out
}
