package models

import (
	"fmt"
	"regexp"
	"time"
)

// EventKind is the closed set of event types the dispatcher understands.
type EventKind string

const (
	EventKindDeadline        EventKind = "DEADLINE"
	EventKindTrade           EventKind = "TRADE"
	EventKindSigning         EventKind = "SIGNING"
	EventKindRelease         EventKind = "RELEASE"
	EventKindRestructure     EventKind = "RESTRUCTURE"
	EventKindFranchiseTag    EventKind = "FRANCHISE_TAG"
	EventKindFAWaveTick      EventKind = "FA_WAVE_TICK"
	EventKindDraftPick       EventKind = "DRAFT_PICK"
	EventKindRetirementCheck EventKind = "RETIREMENT_CHECK"
	EventKindGame            EventKind = "GAME"
	EventKindPhaseHook       EventKind = "PHASE_HOOK"
)

// EventStatus is the lifecycle state of an event record.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusExecuted  EventStatus = "executed"
	EventStatusFailed    EventStatus = "failed"
)

// Priority orders events within a single date: deadlines flip league state
// first, transactions run before games so rosters reflect the day's moves,
// and phase hooks always run last.
func (k EventKind) Priority() int {
	switch k {
	case EventKindDeadline:
		return 10
	case EventKindTrade, EventKindSigning, EventKindRelease, EventKindRestructure, EventKindFranchiseTag:
		return 20
	case EventKindFAWaveTick:
		return 25
	case EventKindDraftPick:
		return 30
	case EventKindRetirementCheck:
		return 35
	case EventKindGame:
		return 40
	case EventKindPhaseHook:
		return 90
	default:
		return 50
	}
}

// Event is one scheduled or executed occurrence on the league calendar.
// EventID is the store's internal id (a UUID); StructuredID is the stable
// human-readable id used for duplicate detection across reconstructions.
type Event struct {
	EventID      string                 `json:"eventId" bson:"event_id"`
	DynastyID    string                 `json:"dynastyId" bson:"dynasty_id"`
	Date         time.Time              `json:"date" bson:"date"`
	Kind         EventKind              `json:"kind" bson:"kind"`
	StructuredID string                 `json:"structuredId" bson:"structured_id"`
	Priority     int                    `json:"priority" bson:"priority"`
	InsertOrder  int64                  `json:"insertOrder" bson:"insert_order"`
	Payload      map[string]interface{} `json:"payload" bson:"payload_blob"`
	Status       EventStatus            `json:"status" bson:"status"`
	Result       map[string]interface{} `json:"result,omitempty" bson:"result_blob,omitempty"`
}

// StructuredID builds the stable id form "{kind}_{season}_{sub}_{index}",
// e.g. "playoff_2025_wild_card_1".
func StructuredID(kind string, season int, sub string, index int) string {
	return fmt.Sprintf("%s_%d_%s_%d", kind, season, sub, index)
}

// PlayoffRound names one round of the postseason bracket.
type PlayoffRound string

const (
	RoundWildCard   PlayoffRound = "wild_card"
	RoundDivisional PlayoffRound = "divisional"
	RoundConference PlayoffRound = "conference"
	RoundSuperBowl  PlayoffRound = "super_bowl"
)

// playoffRoundPattern anchors at the end of the structured id so that
// dynasty ids containing underscores never break round parsing.
var playoffRoundPattern = regexp.MustCompile(`_(wild_card|divisional|conference|super_bowl)_(\d+)$`)

// ParsePlayoffRound extracts the round name and game index from the tail of
// a playoff structured id. The boolean is false for non-playoff ids.
func ParsePlayoffRound(structuredID string) (PlayoffRound, int, bool) {
	m := playoffRoundPattern.FindStringSubmatch(structuredID)
	if m == nil {
		return "", 0, false
	}
	var index int
	fmt.Sscanf(m[2], "%d", &index)
	return PlayoffRound(m[1]), index, true
}

// PlayoffStructuredID builds "playoff_{season}_{round}_{n}".
func PlayoffStructuredID(season int, round PlayoffRound, n int) string {
	return StructuredID("playoff", season, string(round), n)
}

// PlayoffPrefix is the structured-id prefix shared by every playoff event
// of a season, used by the controller's idempotence scan.
func PlayoffPrefix(season int) string {
	return fmt.Sprintf("playoff_%d_", season)
}
