package models

// DraftPickAsset is a tradable future or current draft selection. Origin is
// the team whose finish determines the slot; Owner holds the right to pick.
type DraftPickAsset struct {
	DynastyID   string `json:"dynastyId" bson:"dynasty_id"`
	Season      int    `json:"season" bson:"season"`
	Round       int    `json:"round" bson:"round"`
	PickInRound int    `json:"pickInRound" bson:"pick_in_round"` // 0 until the order is computed
	OwnerTeamID int    `json:"ownerTeamId" bson:"owner_team_id"`
	OriginTeamID int   `json:"originTeamId" bson:"origin_team_id"`
}

// TradeSide is one team's half of a proposal.
type TradeSide struct {
	TeamID    int              `json:"teamId" bson:"team_id"`
	PlayerIDs []int            `json:"playerIds" bson:"player_ids"`
	Picks     []DraftPickAsset `json:"picks" bson:"picks"`
}

// TradeProposal is a two-team swap of players and picks. Values are filled
// in by the trade value model before validation.
type TradeProposal struct {
	DynastyID string    `json:"dynastyId" bson:"dynasty_id"`
	SideA     TradeSide `json:"sideA" bson:"side_a"`
	SideB     TradeSide `json:"sideB" bson:"side_b"`
	ValueA    float64   `json:"valueA" bson:"value_a"`
	ValueB    float64   `json:"valueB" bson:"value_b"`
}

// FairnessRatio is min(valueA, valueB) / max(valueA, valueB).
func (t *TradeProposal) FairnessRatio() float64 {
	hi, lo := t.ValueA, t.ValueB
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == 0 {
		return 0
	}
	return lo / hi
}

// FairnessTier buckets a proposal by its fairness ratio.
type FairnessTier string

const (
	FairnessVeryFair   FairnessTier = "VERY_FAIR"
	FairnessFair       FairnessTier = "FAIR"
	FairnessBorderline FairnessTier = "BORDERLINE"
	FairnessReject     FairnessTier = "REJECT"
)

// Tier classifies the proposal's fairness ratio.
func (t *TradeProposal) Tier() FairnessTier {
	switch ratio := t.FairnessRatio(); {
	case ratio >= 0.95:
		return FairnessVeryFair
	case ratio >= 0.80:
		return FairnessFair
	case ratio >= 0.70:
		return FairnessBorderline
	default:
		return FairnessReject
	}
}

// GMArchetype drives a team's transaction appetite.
type GMArchetype string

const (
	GMConservative GMArchetype = "conservative"
	GMBalanced     GMArchetype = "balanced"
	GMAggressive   GMArchetype = "aggressive"
	GMStarChaser   GMArchetype = "star_chaser"
	GMWinNow       GMArchetype = "win_now"
	GMRebuilding   GMArchetype = "rebuilding"
)

// AllArchetypes lists the supported GM personalities.
var AllArchetypes = []GMArchetype{
	GMConservative, GMBalanced, GMAggressive, GMStarChaser, GMWinNow, GMRebuilding,
}
