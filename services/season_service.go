package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"

	"golang.org/x/sync/errgroup"
)

// LeagueController drives the league calendar. One call to AdvanceDay drains
// the dynasty's events for the current date, then moves the clock one day and
// persists the state row. Phase boundaries are PHASE_HOOK events the
// controller plants on the calendar itself: each phase carries exactly one
// exit hook, and executing it performs the transition and schedules the next
// phase's content. Everything the controller inserts is idempotent through
// structured ids, so replaying a day after a crash never duplicates work.
type LeagueController struct {
	store      interfaces.LeagueStore
	dispatcher *EventDispatcher
	phases     *PhaseMachine
	schedule   *ScheduleService
	playoffs   *PlayoffService
	draft      *DraftService
	retirement *RetirementService
	cap        *CapService
	gm         *GMProposalService

	maxAdvanceDays int
	dayDeadline    time.Duration
	logger         *logging.Logger
}

func NewLeagueController(
	store interfaces.LeagueStore,
	dispatcher *EventDispatcher,
	phases *PhaseMachine,
	schedule *ScheduleService,
	playoffs *PlayoffService,
	draft *DraftService,
	retirement *RetirementService,
	cap *CapService,
	gm *GMProposalService,
	maxAdvanceDays int,
	dayDeadline time.Duration,
) *LeagueController {
	c := &LeagueController{
		store:          store,
		dispatcher:     dispatcher,
		phases:         phases,
		schedule:       schedule,
		playoffs:       playoffs,
		draft:          draft,
		retirement:     retirement,
		cap:            cap,
		gm:             gm,
		maxAdvanceDays: maxAdvanceDays,
		dayDeadline:    dayDeadline,
		logger:         logging.WithPrefix("league"),
	}
	dispatcher.SetHookHandler(c.handleHook)
	return c
}

// AdvanceReport summarizes one advance call.
type AdvanceReport struct {
	Days     int                 `json:"days"`
	Executed int                 `json:"executed"`
	Failed   int                 `json:"failed"`
	State    models.DynastyState `json:"state"`
}

// AdvanceDay runs one calendar day: plant the phase's exit hook, roll any GM
// proposal tick, dispatch the date's events, then move the clock and verify
// the state write.
func (c *LeagueController) AdvanceDay(ctx context.Context, state *models.DynastyState) (int, int, error) {
	if err := c.ensurePhaseExit(ctx, state); err != nil {
		return 0, 0, err
	}
	if err := c.maybeScheduleGMTick(ctx, state); err != nil {
		return 0, 0, err
	}

	executed, failed, err := c.dispatcher.DispatchDay(ctx, state, state.CurrentDate)
	if err != nil {
		return executed, failed, err
	}

	state.CurrentDate = models.DateOnly(state.CurrentDate).AddDate(0, 0, 1)
	state.CurrentWeek = WeekOfDate(state.Season, state.CurrentDate)
	if err := c.store.Dynasties().SaveState(ctx, *state); err != nil {
		return executed, failed, err
	}
	return executed, failed, nil
}

// AdvanceDays advances up to n days, clamped by the configured ceiling. Each
// day runs under its own deadline so one wedged day cannot hang the whole
// advance.
func (c *LeagueController) AdvanceDays(ctx context.Context, dynastyID string, n int) (*AdvanceReport, error) {
	if n < 1 {
		return nil, fmt.Errorf("advance days must be positive, got %d", n)
	}
	if n > c.maxAdvanceDays {
		n = c.maxAdvanceDays
	}
	state, err := c.store.Dynasties().GetState(ctx, dynastyID)
	if err != nil {
		return nil, err
	}

	report := &AdvanceReport{}
	for i := 0; i < n; i++ {
		executed, failed, err := c.advanceOne(ctx, state)
		report.Executed += executed
		report.Failed += failed
		if err != nil {
			report.State = *state
			return report, err
		}
		report.Days++
	}
	report.State = *state
	return report, nil
}

// AdvanceWeek runs seven calendar days and aggregates the reports.
func (c *LeagueController) AdvanceWeek(ctx context.Context, dynastyID string) (*AdvanceReport, error) {
	return c.AdvanceDays(ctx, dynastyID, 7)
}

// ProgressFunc observes the state after each completed day of a long advance.
type ProgressFunc func(day int, state models.DynastyState)

// AdvanceToEndOfPhase advances until the phase flips (or the season rolls,
// which also flips the phase). Cancellation takes effect between days, never
// mid-day. progress may be nil.
func (c *LeagueController) AdvanceToEndOfPhase(ctx context.Context, dynastyID string, progress ProgressFunc) (*AdvanceReport, error) {
	state, err := c.store.Dynasties().GetState(ctx, dynastyID)
	if err != nil {
		return nil, err
	}
	from := state.Phase

	report := &AdvanceReport{}
	for i := 0; i < c.maxAdvanceDays; i++ {
		if err := ctx.Err(); err != nil {
			report.State = *state
			return report, err
		}
		executed, failed, err := c.advanceOne(ctx, state)
		report.Executed += executed
		report.Failed += failed
		if err != nil {
			report.State = *state
			return report, err
		}
		report.Days++
		if progress != nil {
			progress(report.Days, *state)
		}
		if state.Phase != from {
			report.State = *state
			return report, nil
		}
	}
	report.State = *state
	return report, fmt.Errorf("phase %s did not end within %d days", from, c.maxAdvanceDays)
}

// SimulateToEndOfSeason advances until the league year rolls over.
func (c *LeagueController) SimulateToEndOfSeason(ctx context.Context, dynastyID string) (*AdvanceReport, error) {
	state, err := c.store.Dynasties().GetState(ctx, dynastyID)
	if err != nil {
		return nil, err
	}
	from := state.Season

	report := &AdvanceReport{}
	for i := 0; i < c.maxAdvanceDays; i++ {
		if err := ctx.Err(); err != nil {
			report.State = *state
			return report, err
		}
		executed, failed, err := c.advanceOne(ctx, state)
		report.Executed += executed
		report.Failed += failed
		if err != nil {
			report.State = *state
			return report, err
		}
		report.Days++
		if state.Season != from {
			report.State = *state
			return report, nil
		}
	}
	report.State = *state
	return report, fmt.Errorf("season %d did not end within %d days", from, c.maxAdvanceDays)
}

// AdvanceAllDynasties advances several saves in parallel. The store
// serializes writes per dynasty, so dynasties never contend with each other.
func (c *LeagueController) AdvanceAllDynasties(ctx context.Context, dynastyIDs []string, days int) (map[string]*AdvanceReport, error) {
	reports := make(map[string]*AdvanceReport, len(dynastyIDs))
	var group errgroup.Group
	results := make([]*AdvanceReport, len(dynastyIDs))
	for i, id := range dynastyIDs {
		i, id := i, id
		group.Go(func() error {
			report, err := c.AdvanceDays(ctx, id, days)
			results[i] = report
			if err != nil {
				return fmt.Errorf("dynasty %s: %w", id, err)
			}
			return nil
		})
	}
	err := group.Wait()
	for i, id := range dynastyIDs {
		if results[i] != nil {
			reports[id] = results[i]
		}
	}
	return reports, err
}

func (c *LeagueController) advanceOne(ctx context.Context, state *models.DynastyState) (int, int, error) {
	dayCtx := ctx
	if c.dayDeadline > 0 {
		var cancel context.CancelFunc
		dayCtx, cancel = context.WithTimeout(ctx, c.dayDeadline)
		defer cancel()
	}
	return c.AdvanceDay(dayCtx, state)
}

// Exit hooks: one per phase, named for what they start rather than what they
// end.
const (
	hookStartPreseason     = "start_preseason"
	hookStartRegularSeason = "start_regular_season"
	hookStartPlayoffs      = "start_playoffs"
	hookCloseSeason        = "close_season"
	hookOpenFreeAgency     = "open_free_agency"
	hookStartDraft         = "start_draft"
	hookRollover           = "league_year_rollover"
)

// phaseExit names the current phase's exit hook and the date it fires.
func phaseExit(phase models.Phase, season int) (string, time.Time) {
	switch phase {
	case models.PhaseOffseason:
		return hookStartPreseason, TrainingCampStart(season)
	case models.PhasePreseason:
		return hookStartRegularSeason, SeasonKickoff(season).AddDate(0, 0, -1)
	case models.PhaseRegularSeason:
		// Tuesday after the Monday-night finale of week 18.
		return hookStartPlayoffs, WeekStart(season, RegularSeasonWeeks).AddDate(0, 0, 5)
	case models.PhasePlayoffs:
		return hookCloseSeason, HonorsDate(season)
	case models.PhaseOffseasonHonors:
		return hookOpenFreeAgency, FreeAgencyStart(season).AddDate(0, 0, -1)
	case models.PhaseOffseasonFA:
		return hookStartDraft, DraftDate(season).AddDate(0, 0, -1)
	case models.PhaseOffseasonDraft:
		return hookRollover, DraftDate(season).AddDate(0, 0, 3)
	default:
		return "", time.Time{}
	}
}

// ensurePhaseExit plants the current phase's exit hook. Idempotent insert
// makes this safe to call every day.
func (c *LeagueController) ensurePhaseExit(ctx context.Context, state *models.DynastyState) error {
	name, date := phaseExit(state.Phase, state.Season)
	if name == "" {
		return fmt.Errorf("phase %s has no exit hook", state.Phase)
	}
	if state.Phase == models.PhaseRegularSeason {
		// The playoffs wait for the full slate, not the calendar: a stalled
		// schedule keeps the hook unplanted until every game has executed.
		done, err := c.regularSeasonComplete(ctx, state)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		// A slate that finishes late still fires: dispatch only looks at
		// the current date, never behind it.
		if date.Before(models.DateOnly(state.CurrentDate)) {
			date = models.DateOnly(state.CurrentDate)
		}
	}
	_, err := c.store.Events().Insert(ctx, &models.Event{
		DynastyID:    state.DynastyID,
		Date:         date,
		Kind:         models.EventKindPhaseHook,
		StructuredID: models.StructuredID("hook", state.Season, name, 1),
		Payload:      map[string]interface{}{"hook": name},
	})
	return err
}

// regularSeasonComplete reports whether every regular-season game has
// executed: 272 games across the 18-week slate.
func (c *LeagueController) regularSeasonComplete(ctx context.Context, state *models.DynastyState) (bool, error) {
	prefix := fmt.Sprintf("game_%d_week_", state.Season)
	executed, err := c.store.Events().CountByStructuredPrefix(ctx, state.DynastyID, prefix, models.EventStatusExecuted)
	if err != nil {
		return false, err
	}
	return executed >= models.NumTeams*GamesPerTeam/2, nil
}

// maybeScheduleGMTick lets the AI front offices work on Tuesdays during the
// regular season and through free agency. The GM engine keeps trades inside
// the deadline on its own; wire moves run all season. The tick number keeps
// each Tuesday's structured ids distinct.
func (c *LeagueController) maybeScheduleGMTick(ctx context.Context, state *models.DynastyState) error {
	date := models.DateOnly(state.CurrentDate)
	if date.Weekday() != time.Tuesday {
		return nil
	}
	var tick int
	switch state.Phase {
	case models.PhaseRegularSeason:
		tick = WeekOfDate(state.Season, date)
	case models.PhaseOffseasonFA:
		tick = 100 + int(date.Sub(FreeAgencyStart(state.Season)).Hours()/(24*7))
	default:
		return nil
	}

	rng := rand.New(rand.NewSource(gameSeed(state.DynastyID, fmt.Sprintf("gm_%d_tick_%d", state.Season, tick))))
	scheduled, err := c.gm.ScheduleProposals(ctx, state.DynastyID, state.Season, tick, date, state.Phase, rng)
	if err != nil {
		return err
	}
	if scheduled > 0 {
		c.logger.Debugf("GM tick %d: %d proposals on the wire", tick, scheduled)
	}
	return nil
}

// handleHook is the dispatcher's PHASE_HOOK callback. It runs inside the
// event's transaction: the transition, the next phase's scheduled content and
// the verified state write all commit or roll back together.
func (c *LeagueController) handleHook(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	name := payloadString(event.Payload, "hook")
	c.logger.Infof("Phase hook %s firing on %s (season %d, phase %s)",
		name, event.Date.Format("2006-01-02"), state.Season, state.Phase)

	var err error
	switch name {
	case hookStartPreseason:
		err = c.startPreseason(ctx, state)
	case hookStartRegularSeason:
		err = c.startRegularSeason(ctx, state)
	case hookStartPlayoffs:
		err = c.startPlayoffs(ctx, state)
	case hookCloseSeason:
		err = c.closeSeason(ctx, state)
	case hookOpenFreeAgency:
		err = c.openFreeAgency(ctx, state)
	case hookStartDraft:
		err = c.startDraft(ctx, state)
	case hookRollover:
		err = c.rollover(ctx, state)
	default:
		err = fmt.Errorf("unknown phase hook %q", name)
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"hook":   name,
		"phase":  string(state.Phase),
		"season": state.Season,
	}, nil
}

// transition flips the phase through the state machine and persists the
// verified state row.
func (c *LeagueController) transition(ctx context.Context, state *models.DynastyState, to models.Phase) error {
	if err := c.phases.ValidateTransition(state.Phase, to); err != nil {
		return err
	}
	state.Phase = to
	return c.store.Dynasties().SaveState(ctx, *state)
}

func (c *LeagueController) startPreseason(ctx context.Context, state *models.DynastyState) error {
	for _, game := range c.schedule.PreseasonGames(state.Season) {
		if err := c.insertGameEvent(ctx, state.DynastyID, game); err != nil {
			return err
		}
	}
	if _, err := c.store.Events().Insert(ctx, &models.Event{
		DynastyID:    state.DynastyID,
		Date:         FinalRosterDeadline(state.Season),
		Kind:         models.EventKindDeadline,
		StructuredID: models.StructuredID("deadline", state.Season, "final_roster", 1),
		Payload:      map[string]interface{}{"deadline": "final_roster"},
	}); err != nil {
		return err
	}
	return c.transition(ctx, state, models.PhasePreseason)
}

func (c *LeagueController) startRegularSeason(ctx context.Context, state *models.DynastyState) error {
	for _, game := range c.schedule.RegularSeasonGames(state.Season) {
		if err := c.insertGameEvent(ctx, state.DynastyID, game); err != nil {
			return err
		}
	}
	if _, err := c.store.Events().Insert(ctx, &models.Event{
		DynastyID:    state.DynastyID,
		Date:         TradeDeadlineDate(state.Season),
		Kind:         models.EventKindDeadline,
		StructuredID: models.StructuredID("deadline", state.Season, "trade", 1),
		Payload:      map[string]interface{}{"deadline": "trade_deadline"},
	}); err != nil {
		return err
	}
	return c.transition(ctx, state, models.PhaseRegularSeason)
}

func (c *LeagueController) startPlayoffs(ctx context.Context, state *models.DynastyState) error {
	if err := c.transition(ctx, state, models.PhasePlayoffs); err != nil {
		return err
	}
	return c.playoffs.Initialize(ctx, state.DynastyID, state.Season)
}

// closeSeason hands out the hardware once the Super Bowl is in the books and
// opens the honors window with its retirement check.
func (c *LeagueController) closeSeason(ctx context.Context, state *models.DynastyState) error {
	finalID := models.PlayoffStructuredID(state.Season, models.RoundSuperBowl, 1)
	final, err := c.store.Games().GetGame(ctx, state.DynastyID, finalID)
	if err != nil {
		return fmt.Errorf("season %d closing without a title game: %w", state.Season, err)
	}
	if err := c.retirement.AwardHonors(ctx, state.DynastyID, state.Season,
		final.WinnerTeamID(), final.LoserTeamID()); err != nil {
		return err
	}
	if _, err := c.store.Events().Insert(ctx, &models.Event{
		DynastyID:    state.DynastyID,
		Date:         RetirementCheckDate(state.Season),
		Kind:         models.EventKindRetirementCheck,
		StructuredID: models.StructuredID("retirement", state.Season, "check", 1),
		Payload:      map[string]interface{}{"season": state.Season},
	}); err != nil {
		return err
	}
	return c.transition(ctx, state, models.PhaseOffseasonHonors)
}

// openFreeAgency opens the new league year: expiring contracts fall off and
// stock the market, next season's cap sheets open with carryover, and the
// signing waves go on the calendar. The phase's season number still reads as
// the completed season until the post-draft rollover; the money moves on next
// season's sheets.
func (c *LeagueController) openFreeAgency(ctx context.Context, state *models.DynastyState) error {
	if err := c.cap.ExpireContracts(ctx, state.DynastyID, state.Season+1, state.CurrentDate); err != nil {
		return err
	}
	if err := c.cap.RolloverCarryover(ctx, state.DynastyID, state.Season, state.CurrentDate); err != nil {
		return err
	}
	for i, date := range FAWaveDates(state.Season) {
		if _, err := c.store.Events().Insert(ctx, &models.Event{
			DynastyID:    state.DynastyID,
			Date:         date,
			Kind:         models.EventKindFAWaveTick,
			StructuredID: models.StructuredID("fa", state.Season, "wave", i+1),
			Payload:      map[string]interface{}{"wave": i + 1},
		}); err != nil {
			return err
		}
	}
	return c.transition(ctx, state, models.PhaseOffseasonFA)
}

func (c *LeagueController) startDraft(ctx context.Context, state *models.DynastyState) error {
	if err := c.draft.ScheduleDraft(ctx, state.DynastyID, state.Season); err != nil {
		return err
	}
	return c.transition(ctx, state, models.PhaseOffseasonDraft)
}

// rollover turns the calendar to the new season after the draft: the league
// ages a year, a fresh draft class of pick assets is minted two years out and
// the standings slate resets. The cap side already rolled when free agency
// opened.
func (c *LeagueController) rollover(ctx context.Context, state *models.DynastyState) error {
	if !c.phases.RollsSeason(state.Phase) {
		return fmt.Errorf("rollover fired in phase %s", state.Phase)
	}
	newSeason := state.Season + 1

	if err := c.retirement.AgePlayers(ctx, state.DynastyID); err != nil {
		return err
	}
	if err := c.draft.CreatePickAssets(ctx, state.DynastyID, newSeason+2); err != nil {
		return err
	}
	for teamID := 1; teamID <= models.NumTeams; teamID++ {
		if err := c.store.Standings().SaveStandings(ctx, &models.StandingsRow{
			DynastyID: state.DynastyID,
			Season:    newSeason,
			TeamID:    teamID,
		}); err != nil {
			return err
		}
	}

	state.Season = newSeason
	state.CurrentWeek = 0
	c.logger.Infof("League year rolled to season %d", newSeason)
	return c.transition(ctx, state, models.PhaseOffseason)
}

func (c *LeagueController) insertGameEvent(ctx context.Context, dynastyID string, game ScheduledGame) error {
	_, err := c.store.Events().Insert(ctx, &models.Event{
		DynastyID:    dynastyID,
		Date:         game.Date,
		Kind:         models.EventKindGame,
		StructuredID: game.StructuredID,
		Payload: map[string]interface{}{
			"home_team_id": game.HomeTeamID,
			"away_team_id": game.AwayTeamID,
			"week":         game.Week,
			"season":       game.Season,
			"season_type":  string(game.SeasonType),
			"game_type":    string(game.GameType),
		},
	})
	return err
}
