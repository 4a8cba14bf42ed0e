package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// GMProposalService is the AI front office: each team has a fixed archetype
// that sets its appetite for moves and how it splits them between trades,
// wire signings, restructures and cuts. It reads its roster for positional
// needs, hunts other rosters and the free-agent pool for fits and assembles
// pick packages sized by the valuation model. Proposals go through the same
// validate and execute pipeline as user moves; a rejected proposal is simply
// dropped.
type GMProposalService struct {
	store  interfaces.LeagueStore
	value  *TradeValueService
	logger *logging.Logger
}

func NewGMProposalService(store interfaces.LeagueStore, value *TradeValueService) *GMProposalService {
	return &GMProposalService{
		store:  store,
		value:  value,
		logger: logging.WithPrefix("gm"),
	}
}

// ArchetypeForTeam fixes each franchise's personality for the dynasty.
func ArchetypeForTeam(teamID int) models.GMArchetype {
	return models.AllArchetypes[(teamID-1)%len(models.AllArchetypes)]
}

// movesPerSeason is the archetype's expected proposal count per league year.
var movesPerSeason = map[models.GMArchetype]float64{
	models.GMConservative: 0.5,
	models.GMBalanced:     1.0,
	models.GMAggressive:   2.5,
	models.GMStarChaser:   2.0,
	models.GMWinNow:       2.0,
	models.GMRebuilding:   1.5,
}

type gmMove int

const (
	gmMoveTrade gmMove = iota
	gmMoveSigning
	gmMoveRestructure
	gmMoveCut
)

// moveWeights splits each archetype's appetite across the move kinds it
// favors, in gmMove order: trade, signing, restructure, cut.
var moveWeights = map[models.GMArchetype][4]float64{
	models.GMConservative: {0.20, 0.40, 0.20, 0.20},
	models.GMBalanced:     {0.40, 0.30, 0.20, 0.10},
	models.GMAggressive:   {0.60, 0.20, 0.20, 0.00},
	models.GMStarChaser:   {0.50, 0.40, 0.10, 0.00},
	models.GMWinNow:       {0.40, 0.20, 0.40, 0.00},
	models.GMRebuilding:   {0.40, 0.10, 0.00, 0.50},
}

func pickMove(archetype models.GMArchetype, rng *rand.Rand) gmMove {
	weights := moveWeights[archetype]
	roll := rng.Float64()
	for move, w := range weights {
		if roll < w {
			return gmMove(move)
		}
		roll -= w
	}
	return gmMoveTrade
}

// minStarterOverall is the group rating below which a position counts as a
// need.
const minStarterOverall = 74

// ScheduleProposals rolls each team's appetite for one tick and inserts
// events for whatever the GMs cooked up. The dispatcher values, validates
// and executes them like any user move; an unfair or illegal proposal simply
// fails its event. The rng is seeded by the caller so a dynasty replays
// identically.
func (g *GMProposalService) ScheduleProposals(ctx context.Context, dynastyID string, season, week int, date time.Time, phase models.Phase, rng *rand.Rand) (int, error) {
	tradesOpen := phase == models.PhaseOffseasonFA ||
		(phase == models.PhaseRegularSeason && date.Before(TradeDeadlineDate(season)))

	scheduled := 0
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		archetype := ArchetypeForTeam(teamID)
		weeklyChance := movesPerSeason[archetype] / float64(RegularSeasonWeeks)
		if rng.Float64() >= weeklyChance {
			continue
		}
		move := pickMove(archetype, rng)
		if phase == models.PhaseOffseasonFA {
			// The signing waves run the offseason market; the GMs here work
			// the phones.
			move = gmMoveTrade
		}
		if move == gmMoveTrade && !tradesOpen {
			// Past the deadline the front office works the wire instead.
			move = gmMoveSigning
		}

		var (
			event *models.Event
			err   error
		)
		switch move {
		case gmMoveTrade:
			event, err = g.tradeEvent(ctx, dynastyID, teamID, season, week, date, rng)
		case gmMoveSigning:
			event, err = g.signingEvent(ctx, dynastyID, teamID, season, week, date)
		case gmMoveRestructure:
			event, err = g.restructureEvent(ctx, dynastyID, teamID, season, week, date)
		case gmMoveCut:
			event, err = g.cutEvent(ctx, dynastyID, teamID, season, week, date)
		}
		if err != nil {
			return scheduled, err
		}
		if event == nil {
			continue
		}
		if _, err := g.store.Events().Insert(ctx, event); err != nil {
			return scheduled, err
		}
		scheduled++
	}
	return scheduled, nil
}

func gmStructuredID(kind string, season, teamID, week int) string {
	return models.StructuredID(kind, season, fmt.Sprintf("gm_team%d_tick", teamID), week)
}

func (g *GMProposalService) tradeEvent(ctx context.Context, dynastyID string, teamID, season, week int, date time.Time, rng *rand.Rand) (*models.Event, error) {
	proposal, err := g.ProposeTrade(ctx, dynastyID, teamID, season, rng)
	if err != nil || proposal == nil {
		return nil, err
	}
	raw, err := json.Marshal(proposal)
	if err != nil {
		return nil, err
	}
	return &models.Event{
		DynastyID:    dynastyID,
		Date:         date,
		Kind:         models.EventKindTrade,
		StructuredID: gmStructuredID("trade", season, teamID, week),
		Payload:      map[string]interface{}{"proposal_json": string(raw)},
	}, nil
}

// signingEvent shops the free-agent wire for the team's biggest hole. The
// validator rejects it later if the money or the roster spot is not there.
func (g *GMProposalService) signingEvent(ctx context.Context, dynastyID string, teamID, season, week int, date time.Time) (*models.Event, error) {
	roster, err := g.store.Players().TeamRoster(ctx, dynastyID, teamID)
	if err != nil {
		return nil, err
	}
	needs := positionNeeds(roster)
	if len(needs) == 0 {
		return nil, nil
	}
	pool, err := g.store.Players().PlayersByStatus(ctx, dynastyID, models.PlayerStatusFreeAgent)
	if err != nil {
		return nil, err
	}
	for _, need := range needs {
		for _, player := range pool { // pool arrives best-first
			if player.Position != need {
				continue
			}
			years, total, bonus := MarketContract(player)
			return &models.Event{
				DynastyID:    dynastyID,
				Date:         date,
				Kind:         models.EventKindSigning,
				StructuredID: gmStructuredID("signing", season, teamID, week),
				Payload: map[string]interface{}{
					"player_id":     player.PlayerID,
					"team_id":       teamID,
					"years":         years,
					"total_value":   total,
					"signing_bonus": bonus,
				},
			}, nil
		}
	}
	return nil, nil
}

// restructureEvent converts salary to bonus on the team's biggest contract,
// but only when the sheet is actually tight.
func (g *GMProposalService) restructureEvent(ctx context.Context, dynastyID string, teamID, season, week int, date time.Time) (*models.Event, error) {
	record, err := g.store.Cap().GetCapRecord(ctx, dynastyID, teamID, season)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if record.CapSpace() >= 5_000_000 {
		return nil, nil
	}
	contracts, err := g.store.Contracts().ActiveContractsByTeam(ctx, dynastyID, teamID)
	if err != nil {
		return nil, err
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CapHitFor(season) > contracts[j].CapHitFor(season)
	})
	for i := range contracts {
		year := contracts[i].YearFor(season)
		if year == nil || year.VoidYear || year.BaseSalary <= VeteranMinimumSalary {
			continue
		}
		return &models.Event{
			DynastyID:    dynastyID,
			Date:         date,
			Kind:         models.EventKindRestructure,
			StructuredID: gmStructuredID("restructure", season, teamID, week),
			Payload:      map[string]interface{}{"player_id": contracts[i].PlayerID},
		}, nil
	}
	return nil, nil
}

// cutEvent sheds the worst roster player whose contract leaves no dead money
// behind. Rebuilding teams clear depth this way.
func (g *GMProposalService) cutEvent(ctx context.Context, dynastyID string, teamID, season, week int, date time.Time) (*models.Event, error) {
	roster, err := g.store.Players().TeamRoster(ctx, dynastyID, teamID)
	if err != nil {
		return nil, err
	}
	if len(roster) <= RosterMinimum+2 {
		return nil, nil
	}
	// TeamRoster sorts best-first; walk up from the back.
	for i := len(roster) - 1; i >= 0; i-- {
		if roster[i].Overall >= minStarterOverall {
			break
		}
		contract, err := g.activeContract(ctx, dynastyID, roster[i].PlayerID)
		if err != nil {
			return nil, err
		}
		if contract == nil || contract.RemainingProration(season) > 0 {
			continue
		}
		return &models.Event{
			DynastyID:    dynastyID,
			Date:         date,
			Kind:         models.EventKindRelease,
			StructuredID: gmStructuredID("release", season, teamID, week),
			Payload:      map[string]interface{}{"player_id": roster[i].PlayerID, "post_june_1": false},
		}, nil
	}
	return nil, nil
}

// ProposeTrade builds one proposal for a team, or nil when the roster gives
// it nothing to chase. The top-ranked need drives the hunt; the proposer
// packages picks with its last roster spot as a throw-in, so both rosters
// stay level and in-season deals clear the active-roster limit.
func (g *GMProposalService) ProposeTrade(ctx context.Context, dynastyID string, teamID, season int, rng *rand.Rand) (*models.TradeProposal, error) {
	roster, err := g.store.Players().TeamRoster(ctx, dynastyID, teamID)
	if err != nil {
		return nil, err
	}
	needs := positionNeeds(roster)
	if len(needs) == 0 || len(roster) == 0 {
		return nil, nil
	}
	need := needs[0]

	target, err := g.findTarget(ctx, dynastyID, teamID, need, rng)
	if err != nil || target == nil {
		return nil, err
	}

	// TeamRoster sorts best-first; the last man is the throw-in.
	throwIn := roster[len(roster)-1]
	targetContract, err := g.activeContract(ctx, dynastyID, target.PlayerID)
	if err != nil {
		return nil, err
	}
	throwInContract, err := g.activeContract(ctx, dynastyID, throwIn.PlayerID)
	if err != nil {
		return nil, err
	}
	remainder := g.value.PlayerValue(*target, targetContract) - g.value.PlayerValue(throwIn, throwInContract)
	if remainder <= 0 {
		return nil, nil
	}

	picks, err := g.store.Picks().PicksByOwner(ctx, dynastyID, teamID)
	if err != nil {
		return nil, err
	}
	offer := g.assembleOffer(remainder, picks, season)
	if len(offer) == 0 {
		return nil, nil
	}

	return &models.TradeProposal{
		DynastyID: dynastyID,
		SideA: models.TradeSide{
			TeamID:    teamID,
			PlayerIDs: []int{throwIn.PlayerID},
			Picks:     offer,
		},
		SideB: models.TradeSide{
			TeamID:    target.TeamID,
			PlayerIDs: []int{target.PlayerID},
		},
	}, nil
}

func (g *GMProposalService) activeContract(ctx context.Context, dynastyID string, playerID int) (*models.Contract, error) {
	contract, err := g.store.Contracts().ActiveContractByPlayer(ctx, dynastyID, playerID)
	if models.IsNotFound(err) {
		return nil, nil
	}
	return contract, err
}

// groupRating is the depth-weighted strength of a position group: the
// starter counts full, the backup half, the third man a quarter. Thin
// groups score low because the missing depth contributes nothing.
func groupRating(roster []models.Player, pos models.Position) float64 {
	var overalls []int
	for _, p := range roster {
		if p.Position == pos {
			overalls = append(overalls, p.Overall)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(overalls)))

	weight, total := 1.0, 0.0
	for i := 0; i < len(overalls) && i < 3; i++ {
		total += float64(overalls[i]) * weight
		weight /= 2
	}
	return total / 1.75
}

// positionNeeds ranks the position groups sitting below starter grade,
// weakest first. The ordering is deterministic: the same roster always
// shops the same hole first.
func positionNeeds(roster []models.Player) []models.Position {
	type scoredNeed struct {
		pos    models.Position
		rating float64
	}
	var needs []scoredNeed
	for _, pos := range models.AllPositions {
		if pos == models.PositionK || pos == models.PositionP {
			continue
		}
		if rating := groupRating(roster, pos); rating < minStarterOverall {
			needs = append(needs, scoredNeed{pos: pos, rating: rating})
		}
	}
	sort.Slice(needs, func(i, j int) bool {
		if needs[i].rating != needs[j].rating {
			return needs[i].rating < needs[j].rating
		}
		return needs[i].pos < needs[j].pos
	})

	out := make([]models.Position, len(needs))
	for i, n := range needs {
		out[i] = n.pos
	}
	return out
}

// findTarget looks for another team's surplus player at the position: good
// enough to start, but not that team's only option there.
func (g *GMProposalService) findTarget(ctx context.Context, dynastyID string, teamID int, need models.Position, rng *rand.Rand) (*models.Player, error) {
	var candidates []models.Player
	for other := 1; other <= models.NumTeams; other++ {
		if other == teamID {
			continue
		}
		roster, err := g.store.Players().TeamRoster(ctx, dynastyID, other)
		if err != nil {
			return nil, err
		}
		var atPosition []models.Player
		for _, p := range roster {
			if p.Position == need {
				atPosition = append(atPosition, p)
			}
		}
		if len(atPosition) < 2 {
			continue
		}
		sort.Slice(atPosition, func(i, j int) bool { return atPosition[i].Overall > atPosition[j].Overall })
		// Second-best at the position is surplus if he can still start.
		if atPosition[1].Overall >= minStarterOverall {
			candidates = append(candidates, atPosition[1])
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	target := candidates[rng.Intn(len(candidates))]
	return &target, nil
}

// assembleOffer picks the pick package whose value lands closest to the
// target, trying singles then pairs, and gives up outside the fair window.
func (g *GMProposalService) assembleOffer(targetValue float64, picks []models.DraftPickAsset, season int) []models.DraftPickAsset {
	type priced struct {
		pick  models.DraftPickAsset
		value float64
	}
	pricedPicks := make([]priced, 0, len(picks))
	for _, pick := range picks {
		pricedPicks = append(pricedPicks, priced{pick: pick, value: g.value.PickValue(pick, season)})
	}

	best := []models.DraftPickAsset(nil)
	bestGap := math.Inf(1)
	consider := func(offer []models.DraftPickAsset, value float64) {
		ratio := math.Min(value, targetValue) / math.Max(value, targetValue)
		if ratio < 0.80 {
			return
		}
		if gap := math.Abs(value - targetValue); gap < bestGap {
			bestGap = gap
			best = offer
		}
	}

	for i := range pricedPicks {
		consider([]models.DraftPickAsset{pricedPicks[i].pick}, pricedPicks[i].value)
		for j := i + 1; j < len(pricedPicks); j++ {
			consider(
				[]models.DraftPickAsset{pricedPicks[i].pick, pricedPicks[j].pick},
				pricedPicks[i].value+pricedPicks[j].value,
			)
		}
	}
	return best
}
