package services

import (
	"testing"

	"nfl-dynasty-go/models"

	"github.com/stretchr/testify/assert"
)

func TestPhaseCycle(t *testing.T) {
	m := NewPhaseMachine()

	order := []models.Phase{
		models.PhaseOffseason,
		models.PhasePreseason,
		models.PhaseRegularSeason,
		models.PhasePlayoffs,
		models.PhaseOffseasonHonors,
		models.PhaseOffseasonFA,
		models.PhaseOffseasonDraft,
	}
	for i, phase := range order {
		next := order[(i+1)%len(order)]
		assert.Equal(t, next, m.Next(phase))
		assert.NoError(t, m.ValidateTransition(phase, next))
	}

	// Anything but the single successor is rejected.
	err := m.ValidateTransition(models.PhaseOffseason, models.PhaseRegularSeason)
	var violation *models.PhaseViolationError
	assert.ErrorAs(t, err, &violation)
	assert.Error(t, m.ValidateTransition(models.PhasePlayoffs, models.PhasePlayoffs))
}

func TestRollsSeason(t *testing.T) {
	m := NewPhaseMachine()
	assert.True(t, m.RollsSeason(models.PhaseOffseasonDraft))
	assert.False(t, m.RollsSeason(models.PhaseOffseason))
	assert.False(t, m.RollsSeason(models.PhasePlayoffs))
}

func TestCanExecute(t *testing.T) {
	m := NewPhaseMachine()

	cases := []struct {
		phase models.Phase
		kind  models.EventKind
		ok    bool
	}{
		{models.PhaseRegularSeason, models.EventKindGame, true},
		{models.PhaseRegularSeason, models.EventKindTrade, true},
		{models.PhaseRegularSeason, models.EventKindDraftPick, false},
		{models.PhaseRegularSeason, models.EventKindFAWaveTick, false},

		// Playoffs freeze the roster entirely.
		{models.PhasePlayoffs, models.EventKindGame, true},
		{models.PhasePlayoffs, models.EventKindTrade, false},
		{models.PhasePlayoffs, models.EventKindSigning, false},
		{models.PhasePlayoffs, models.EventKindRelease, false},

		// The honors window processes ceremony business and franchise tags.
		{models.PhaseOffseasonHonors, models.EventKindRetirementCheck, true},
		{models.PhaseOffseasonHonors, models.EventKindFranchiseTag, true},
		{models.PhaseOffseasonHonors, models.EventKindSigning, false},
		{models.PhaseOffseasonHonors, models.EventKindGame, false},
		{models.PhaseRegularSeason, models.EventKindFranchiseTag, false},

		{models.PhaseOffseasonFA, models.EventKindFAWaveTick, true},
		{models.PhaseOffseasonFA, models.EventKindSigning, true},
		{models.PhaseOffseasonFA, models.EventKindGame, false},

		// Draft weekend is picks only; trades closed until the market reopens.
		{models.PhaseOffseasonDraft, models.EventKindDraftPick, true},
		{models.PhaseOffseasonDraft, models.EventKindTrade, false},
		{models.PhaseOffseasonDraft, models.EventKindSigning, false},

		// The early offseason clears post-draft waves and late retirements
		// but trades wait for the season.
		{models.PhaseOffseason, models.EventKindSigning, true},
		{models.PhaseOffseason, models.EventKindFAWaveTick, true},
		{models.PhaseOffseason, models.EventKindRetirementCheck, true},
		{models.PhaseOffseason, models.EventKindTrade, false},
		{models.PhaseOffseason, models.EventKindGame, false},
		{models.PhasePreseason, models.EventKindGame, true},
		{models.PhasePreseason, models.EventKindDeadline, true},
		{models.PhasePreseason, models.EventKindTrade, false},
		{models.PhasePreseason, models.EventKindRelease, true},
	}
	for _, tc := range cases {
		err := m.CanExecute(tc.phase, tc.kind)
		if tc.ok {
			assert.NoError(t, err, "%s in %s", tc.kind, tc.phase)
		} else {
			var violation *models.PhaseViolationError
			assert.ErrorAs(t, err, &violation, "%s in %s", tc.kind, tc.phase)
		}
	}

	// Phase hooks run everywhere: they are how phases end.
	for _, phase := range []models.Phase{
		models.PhaseOffseason, models.PhasePreseason, models.PhaseRegularSeason,
		models.PhasePlayoffs, models.PhaseOffseasonHonors, models.PhaseOffseasonFA,
		models.PhaseOffseasonDraft,
	} {
		assert.NoError(t, m.CanExecute(phase, models.EventKindPhaseHook), string(phase))
	}
}

func TestEventPriorityOrdering(t *testing.T) {
	// Deadlines flip state first, transactions precede games, hooks run last.
	assert.Less(t, models.EventKindDeadline.Priority(), models.EventKindTrade.Priority())
	assert.Less(t, models.EventKindTrade.Priority(), models.EventKindFAWaveTick.Priority())
	assert.Less(t, models.EventKindFAWaveTick.Priority(), models.EventKindDraftPick.Priority())
	assert.Less(t, models.EventKindDraftPick.Priority(), models.EventKindGame.Priority())
	assert.Less(t, models.EventKindGame.Priority(), models.EventKindPhaseHook.Priority())
	assert.Equal(t, models.EventKindTrade.Priority(), models.EventKindSigning.Priority())
	assert.Equal(t, models.EventKindTrade.Priority(), models.EventKindFranchiseTag.Priority())
}
