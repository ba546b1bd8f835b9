package collections_test

import (
	"strconv"
	"testing"

	"github.com/alkime/voiceover/pkg/collections"
	"github.com/stretchr/testify/require"
)

type voice struct {
	ID   int
	Name string
}

func TestApply(t *testing.T) {
	t.Run("basic types", func(t *testing.T) {
		squared := collections.Apply([]int{1, 2, 3, 4}, func(i int) int { return i * i })
		require.Equal(t, []int{1, 4, 9, 16}, squared)

		require.Equal(t, []string{"1", "22"}, collections.Apply([]int{1, 22}, strconv.Itoa))
	})

	t.Run("structs", func(t *testing.T) {
		voices := []voice{{ID: 1, Name: "Aria"}, {ID: 2, Name: "Bruno"}}
		names := collections.Apply(voices, func(v voice) string { return v.Name })
		require.Equal(t, []string{"Aria", "Bruno"}, names)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, collections.Apply(nil, strconv.Itoa))
	})
}

func TestFind(t *testing.T) {
	voices := []voice{{ID: 1, Name: "Aria"}, {ID: 2, Name: "Bruno"}, {ID: 2, Name: "Dup"}}

	got, ok := collections.Find(voices, func(v voice) bool { return v.ID == 2 })
	require.True(t, ok)
	require.Equal(t, "Bruno", got.Name)

	got, ok = collections.Find(voices, func(v voice) bool { return v.ID == 9 })
	require.False(t, ok)
	require.Zero(t, got)
}
