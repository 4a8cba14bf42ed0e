package services

import (
	"nfl-dynasty-go/models"
)

// phaseOrder is the fixed yearly cycle. The season number increments when the
// draft phase hands back to the offseason.
var phaseOrder = []models.Phase{
	models.PhaseOffseason,
	models.PhasePreseason,
	models.PhaseRegularSeason,
	models.PhasePlayoffs,
	models.PhaseOffseasonHonors,
	models.PhaseOffseasonFA,
	models.PhaseOffseasonDraft,
}

// permittedKinds is the closed table of event kinds each phase may execute.
// Trades only happen with the season live or the market open; the playoffs
// freeze the roster entirely; the honors window handles ceremony,
// retirements and franchise tags.
var permittedKinds = map[models.Phase]map[models.EventKind]bool{
	models.PhaseOffseason: {
		models.EventKindFAWaveTick:      true,
		models.EventKindSigning:         true,
		models.EventKindRelease:         true,
		models.EventKindRestructure:     true,
		models.EventKindRetirementCheck: true,
		models.EventKindDeadline:        true,
		models.EventKindPhaseHook:       true,
	},
	models.PhasePreseason: {
		models.EventKindGame:        true,
		models.EventKindSigning:     true,
		models.EventKindRelease:     true,
		models.EventKindRestructure: true,
		models.EventKindDeadline:    true,
		models.EventKindPhaseHook:   true,
	},
	models.PhaseRegularSeason: {
		models.EventKindGame:        true,
		models.EventKindSigning:     true,
		models.EventKindRelease:     true,
		models.EventKindRestructure: true,
		models.EventKindTrade:       true,
		models.EventKindDeadline:    true,
		models.EventKindPhaseHook:   true,
	},
	models.PhasePlayoffs: {
		models.EventKindGame:      true,
		models.EventKindPhaseHook: true,
	},
	models.PhaseOffseasonHonors: {
		models.EventKindRetirementCheck: true,
		models.EventKindFranchiseTag:    true,
		models.EventKindPhaseHook:       true,
	},
	models.PhaseOffseasonFA: {
		models.EventKindFAWaveTick:  true,
		models.EventKindSigning:     true,
		models.EventKindRelease:     true,
		models.EventKindRestructure: true,
		models.EventKindTrade:       true,
		models.EventKindPhaseHook:   true,
	},
	models.PhaseOffseasonDraft: {
		models.EventKindDraftPick: true,
		models.EventKindPhaseHook: true,
	},
}

// PhaseMachine owns the calendar phase: every transition and every
// permitted-kind check goes through it.
type PhaseMachine struct{}

func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{}
}

// CanExecute reports whether the kind may run in the phase; a violation is a
// caller bug and comes back as a PhaseViolationError.
func (m *PhaseMachine) CanExecute(phase models.Phase, kind models.EventKind) error {
	if permittedKinds[phase][kind] {
		return nil
	}
	return &models.PhaseViolationError{Phase: phase, Kind: kind}
}

// Next is the single legal successor of a phase.
func (m *PhaseMachine) Next(phase models.Phase) models.Phase {
	for i, p := range phaseOrder {
		if p == phase {
			return phaseOrder[(i+1)%len(phaseOrder)]
		}
	}
	return models.PhaseOffseason
}

// ValidateTransition rejects anything but the single legal successor.
func (m *PhaseMachine) ValidateTransition(from, to models.Phase) error {
	if m.Next(from) == to {
		return nil
	}
	return &models.PhaseViolationError{Phase: from, Kind: models.EventKindPhaseHook}
}

// RollsSeason reports whether leaving the phase starts a new league year.
func (m *PhaseMachine) RollsSeason(from models.Phase) bool {
	return from == models.PhaseOffseasonDraft
}
