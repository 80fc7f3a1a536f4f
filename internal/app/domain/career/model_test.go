package career

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderOrdering(t *testing.T) {
	require.NotEmpty(t, Ladder)
	assert.Equal(t, LevelStart, Ladder[0].Level)
	assert.Equal(t, LevelOrigin, Ladder[len(Ladder)-1].Level)

	// Requirements only grow as the ladder climbs.
	for i := 1; i < len(Ladder); i++ {
		assert.Greater(t, Ladder[i].Directs, Ladder[i-1].Directs, "directs at %s", Ladder[i].Level)
		assert.Greater(t, Ladder[i].Indirects, Ladder[i-1].Indirects, "indirects at %s", Ladder[i].Level)
		assert.GreaterOrEqual(t, Ladder[i].CompanyVolume, Ladder[i-1].CompanyVolume, "volume at %s", Ladder[i].Level)
	}
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(LevelNone))
	assert.Equal(t, 1, Rank(LevelStart))
	assert.Equal(t, len(Ladder), Rank(LevelOrigin))
	assert.Greater(t, Rank(LevelElite), Rank(LevelLeader))
}

func TestRequirementFor(t *testing.T) {
	req, ok := RequirementFor(LevelBuilder)
	require.True(t, ok)
	assert.Equal(t, 50, req.Directs)
	assert.Equal(t, 100, req.Indirects)

	_, ok = RequirementFor(LevelNone)
	assert.False(t, ok)
}

func TestPrecedes(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

	older := Standing{MemberID: "a", QualifiedSince: base, ActiveDirects: 5, FirstQualifying: base}
	newer := Standing{MemberID: "b", QualifiedSince: base.AddDate(0, 1, 0), ActiveDirects: 50, FirstQualifying: base}
	assert.True(t, Precedes(older, newer), "longer continuous qualification wins")
	assert.False(t, Precedes(newer, older))

	busier := Standing{MemberID: "c", QualifiedSince: base, ActiveDirects: 9, FirstQualifying: base}
	assert.True(t, Precedes(busier, older), "active directs break the tie")

	earliest := Standing{MemberID: "d", QualifiedSince: base, ActiveDirects: 5, FirstQualifying: base.AddDate(-1, 0, 0)}
	assert.True(t, Precedes(earliest, older), "first qualification is the final tie break")
}
