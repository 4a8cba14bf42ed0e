package services

import (
	"fmt"
	"math"

	"nfl-dynasty-go/models"
)

// TradeValueService prices players and draft picks on a single scale so the
// validator can judge proposal fairness. Valuation is pure math over the
// inputs; it never touches the store.
type TradeValueService struct{}

func NewTradeValueService() *TradeValueService {
	return &TradeValueService{}
}

// positionMultipliers weight premium positions; everything unlisted trades
// at face value, specialists at a steep discount regardless of rating.
var positionMultipliers = map[models.Position]float64{
	models.PositionQB:   2.00,
	models.PositionEDGE: 2.00,
	models.PositionLT:   2.00,
	models.PositionWR:   1.50,
	models.PositionCB:   1.50,
	models.PositionRB:   1.20,
	models.PositionK:    0.50,
	models.PositionP:    0.50,
}

// ageMultiplier favors players entering their prime and devalues the
// back end of the curve.
func ageMultiplier(age int) float64 {
	switch {
	case age <= 23:
		return 1.10
	case age <= 26:
		return 1.05
	case age <= 28:
		return 1.00
	case age <= 30:
		return 0.85
	case age <= 32:
		return 0.70
	default:
		return 0.50
	}
}

// contractMultiplier prices the deal the player arrives on against his open
// market rate: cost-controlled contracts add value, albatrosses bleed it.
// Players without an active contract price at face value.
func contractMultiplier(p models.Player, c *models.Contract) float64 {
	if c == nil || c.RealYears() == 0 {
		return 1.0
	}
	years, total, _ := MarketContract(p)
	market := total / int64(years)
	if market <= 0 {
		return 1.0
	}
	ratio := float64(c.AverageAnnualValue()) / float64(market)
	switch {
	case ratio <= 0.80:
		return 1.20
	case ratio >= 1.30:
		return 0.70
	default:
		return 1.00
	}
}

// PlayerValue is the core curve: nothing below 50 overall carries trade
// value, and value grows superlinearly above it. The contract may be nil.
func (t *TradeValueService) PlayerValue(p models.Player, contract *models.Contract) float64 {
	base := math.Pow(math.Max(0, float64(p.Overall-50)), 1.8) / 3.0
	mult, ok := positionMultipliers[p.Position]
	if !ok {
		mult = 1.0
	}
	return base * mult * ageMultiplier(p.Age) * contractMultiplier(p, contract)
}

// pickChartAnchors hold the value at the first pick of each round; values
// interpolate linearly between anchors and the chart bottoms out at the last
// pick.
var pickChartAnchors = []float64{3000, 580, 265, 112, 43, 27, 14, 2}

// pickSlotValue prices an overall draft slot (1-based).
func pickSlotValue(overall int) float64 {
	if overall < 1 {
		overall = 1
	}
	last := DraftRounds * models.NumTeams
	if overall > last {
		overall = last
	}
	round := (overall - 1) / models.NumTeams
	posInRound := float64((overall - 1) % models.NumTeams)
	hi := pickChartAnchors[round]
	lo := pickChartAnchors[len(pickChartAnchors)-1]
	if round+1 < len(pickChartAnchors) {
		lo = pickChartAnchors[round+1]
	}
	return hi - (hi-lo)*posInRound/float64(models.NumTeams)
}

// PickValue prices a pick asset. Unslotted picks assume the middle of their
// round; future picks discount five percent per season out.
func (t *TradeValueService) PickValue(pick models.DraftPickAsset, currentSeason int) float64 {
	slot := pick.PickInRound
	if slot == 0 {
		slot = models.NumTeams / 2
	}
	overall := (pick.Round-1)*models.NumTeams + slot
	value := pickSlotValue(overall)

	yearsOut := pick.Season - currentSeason
	if yearsOut > 0 {
		value *= math.Pow(0.95, float64(yearsOut))
	}
	return value
}

// SideValue totals one side of a proposal. Players missing from the
// contracts map price without a contract adjustment.
func (t *TradeValueService) SideValue(side models.TradeSide, players map[int]models.Player, contracts map[int]models.Contract, currentSeason int) (float64, error) {
	var total float64
	for _, id := range side.PlayerIDs {
		p, ok := players[id]
		if !ok {
			return 0, fmt.Errorf("proposal references unknown player %d", id)
		}
		var c *models.Contract
		if contract, ok := contracts[id]; ok {
			c = &contract
		}
		total += t.PlayerValue(p, c)
	}
	for _, pick := range side.Picks {
		total += t.PickValue(pick, currentSeason)
	}
	return total, nil
}

// ValueProposal fills both side values in place.
func (t *TradeValueService) ValueProposal(proposal *models.TradeProposal, players map[int]models.Player, contracts map[int]models.Contract, currentSeason int) error {
	a, err := t.SideValue(proposal.SideA, players, contracts, currentSeason)
	if err != nil {
		return err
	}
	b, err := t.SideValue(proposal.SideB, players, contracts, currentSeason)
	if err != nil {
		return err
	}
	proposal.ValueA = a
	proposal.ValueB = b
	return nil
}
