package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyVotes(t *testing.T) {
	t.Run("duplicate labels collapse at first position", func(t *testing.T) {
		poll := &Poll{Options: []string{"A", "A", "B"}}
		tally := TallyVotes(poll, map[string]int64{"A": 2, "B": 1})

		assert.Equal(t, Counts{{Option: "A", Votes: 2}, {Option: "B", Votes: 1}}, tally.Counts)
		assert.Equal(t, int64(3), tally.Total)
	})

	t.Run("options without votes report zero", func(t *testing.T) {
		poll := &Poll{Options: []string{"Yes", "No", "Maybe"}}
		tally := TallyVotes(poll, map[string]int64{"No": 4})

		n, ok := tally.Counts.Get("Yes")
		assert.True(t, ok)
		assert.Zero(t, n)
		assert.Len(t, tally.Counts, 3)
		assert.Equal(t, int64(4), tally.Total)
	})

	t.Run("votes for removed options are ignored", func(t *testing.T) {
		poll := &Poll{Options: []string{"A", "B"}}
		tally := TallyVotes(poll, map[string]int64{"A": 1, "Gone": 7})

		_, ok := tally.Counts.Get("Gone")
		assert.False(t, ok)
		assert.Equal(t, int64(1), tally.Total)
	})

	t.Run("no options", func(t *testing.T) {
		tally := TallyVotes(&Poll{}, nil)
		assert.Empty(t, tally.Counts)
		assert.Zero(t, tally.Total)
	})

	t.Run("total is the sum of counts", func(t *testing.T) {
		poll := &Poll{Options: []string{"a", "b", "c", "d"}}
		tally := TallyVotes(poll, map[string]int64{"a": 3, "c": 5, "d": 1})

		var sum int64
		for _, oc := range tally.Counts {
			sum += oc.Votes
		}
		assert.Equal(t, sum, tally.Total)
	})
}

func TestCountsMarshalJSONKeepsOptionOrder(t *testing.T) {
	counts := Counts{{Option: "Zebra", Votes: 1}, {Option: "Apple", Votes: 0}, {Option: `Say "hi"`, Votes: 2}}

	raw, err := json.Marshal(counts)
	require.NoError(t, err)
	assert.Equal(t, `{"Zebra":1,"Apple":0,"Say \"hi\"":2}`, string(raw))

	raw, err = json.Marshal(Counts{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))
}
