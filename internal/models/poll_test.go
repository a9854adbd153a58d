package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoll_MajorityThreshold(t *testing.T) {
	cases := []struct {
		members   int
		threshold int
	}{
		{members: 1, threshold: 1},
		{members: 2, threshold: 2},
		{members: 3, threshold: 2},
		{members: 4, threshold: 3},
		{members: 5, threshold: 3},
		{members: 10, threshold: 6},
	}
	for _, tc := range cases {
		p := &Poll{MemberCountAtCreation: tc.members}
		assert.Equal(t, tc.threshold, p.MajorityThreshold(), "members=%d", tc.members)
	}
}

func TestPoll_AddVoteOnlyOnce(t *testing.T) {
	p := &Poll{Options: []string{"c", "o", DrawWinnerID}, MemberCountAtCreation: 5}

	assert.True(t, p.AddVote("c", "u1"))
	assert.False(t, p.AddVote("o", "u1"), "a user votes at most once across options")
	assert.False(t, p.AddVote("c", "u1"))

	assert.Equal(t, []string{"u1"}, p.Votes["c"])
	assert.Empty(t, p.Votes["o"])
	assert.True(t, p.HasVoted("u1"))
	assert.False(t, p.HasVoted("u2"))
}

func TestPoll_ReachedMajorityBoundary(t *testing.T) {
	p := &Poll{Options: []string{"c", "o", DrawWinnerID}, MemberCountAtCreation: 5}

	p.AddVote("c", "u1")
	p.AddVote("c", "u2")
	assert.False(t, p.ReachedMajority("c"), "threshold-1 votes must not decide the poll")

	p.AddVote("c", "u3")
	assert.True(t, p.ReachedMajority("c"))
	assert.False(t, p.ReachedMajority("o"))
}

func TestPoll_HasOption(t *testing.T) {
	p := &Poll{Options: []string{"c", "o", DrawWinnerID}}
	assert.True(t, p.HasOption(DrawWinnerID))
	assert.False(t, p.HasOption("someone-else"))
}
