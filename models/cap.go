package models

import "time"

// SalaryCapRecord is a team's cap sheet for one (dynasty, team, season).
// ActiveCapHits and DeadMoney are maintained by the cap service on every
// executed transaction; compliance is enforced at the final-roster deadline
// rather than continuously.
type SalaryCapRecord struct {
	DynastyID     string `json:"dynastyId" bson:"dynasty_id"`
	TeamID        int    `json:"teamId" bson:"team_id"`
	Season        int    `json:"season" bson:"season"`
	CapLimit      int64  `json:"capLimit" bson:"cap_limit"`
	ActiveCapHits int64  `json:"activeCapHits" bson:"active_hits"`
	DeadMoney     int64  `json:"deadMoney" bson:"dead_money"`
	Carryover     int64  `json:"carryover" bson:"carryover"`
}

// CapSpace is the room left under the adjusted limit. Negative means the
// team is over the cap.
func (r *SalaryCapRecord) CapSpace() int64 {
	return r.CapLimit + r.Carryover - r.ActiveCapHits - r.DeadMoney
}

// IsCompliant reports whether the team fits under its adjusted limit.
func (r *SalaryCapRecord) IsCompliant() bool {
	return r.CapSpace() >= 0
}

// CapTransactionType classifies a cap ledger row.
type CapTransactionType string

const (
	CapTransactionSigning      CapTransactionType = "signing"
	CapTransactionRelease      CapTransactionType = "release"
	CapTransactionTrade        CapTransactionType = "trade"
	CapTransactionRestructure  CapTransactionType = "restructure"
	CapTransactionRetirement   CapTransactionType = "retirement"
	CapTransactionCarryover    CapTransactionType = "carryover"
	CapTransactionFranchiseTag CapTransactionType = "franchise_tag"
)

// CapTransaction is one immutable row of the cap audit log. Every cap
// mutation writes exactly one row per affected team.
type CapTransaction struct {
	ID               string             `json:"id" bson:"id"`
	DynastyID        string             `json:"dynastyId" bson:"dynasty_id"`
	TeamID           int                `json:"teamId" bson:"team_id"`
	Season           int                `json:"season" bson:"season"`
	Date             time.Time          `json:"date" bson:"date"`
	Type             CapTransactionType `json:"type" bson:"transaction_type"`
	PlayerID         int                `json:"playerId" bson:"player_id"`
	CapImpactCurrent int64              `json:"capImpactCurrent" bson:"cap_impact_current"`
	CapImpactFuture  int64              `json:"capImpactFuture" bson:"cap_impact_future"`
	Description      string             `json:"description" bson:"description"`
}
