package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// HookHandler executes a PHASE_HOOK event. The season controller owns phase
// semantics, so it injects the handler rather than the dispatcher knowing
// transitions.
type HookHandler func(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error)

// EventDispatcher drains one day of a dynasty's calendar in deterministic
// order: date, then kind priority, then insertion order. Every event runs in
// its own dynasty transaction; a failed event rolls back alone and the rest
// of the day proceeds. Persistence failures are the exception: they abort
// the day immediately.
type EventDispatcher struct {
	store        interfaces.LeagueStore
	phases       *PhaseMachine
	games        *GameEventService
	transactions *TransactionService
	freeAgency   *FreeAgencyService
	draft        *DraftService
	retirement   *RetirementService
	playoffs     *PlayoffService
	hooks        HookHandler
	logger       *logging.Logger
}

func NewEventDispatcher(
	store interfaces.LeagueStore,
	phases *PhaseMachine,
	games *GameEventService,
	transactions *TransactionService,
	freeAgency *FreeAgencyService,
	draft *DraftService,
	retirement *RetirementService,
	playoffs *PlayoffService,
) *EventDispatcher {
	return &EventDispatcher{
		store:        store,
		phases:       phases,
		games:        games,
		transactions: transactions,
		freeAgency:   freeAgency,
		draft:        draft,
		retirement:   retirement,
		playoffs:     playoffs,
		logger:       logging.WithPrefix("dispatcher"),
	}
}

// SetHookHandler wires the controller's phase-hook logic in after
// construction (the controller itself depends on the dispatcher).
func (d *EventDispatcher) SetHookHandler(h HookHandler) {
	d.hooks = h
}

// DispatchDay executes every scheduled event on the state's current date.
// Returns counts of executed and failed events.
func (d *EventDispatcher) DispatchDay(ctx context.Context, state *models.DynastyState, date time.Time) (int, int, error) {
	events, err := d.store.Events().EventsForDate(ctx, state.DynastyID, date)
	if err != nil {
		return 0, 0, err
	}

	executed, failed := 0, 0
	for _, event := range events {
		if event.Status != models.EventStatusScheduled {
			continue
		}
		if err := d.phases.CanExecute(state.Phase, event.Kind); err != nil {
			// A kind outside its phase is a scheduling bug; surface it.
			return executed, failed, err
		}

		event := event
		txErr := d.store.WithDynastyTransaction(ctx, state.DynastyID, func(txCtx context.Context) error {
			result, execErr := d.execute(txCtx, event, state)
			if execErr != nil {
				return execErr
			}
			if err := d.store.Events().MarkExecuted(txCtx, event.EventID, result, models.EventStatusExecuted); err != nil {
				return err
			}
			// A finished playoff game may complete its round; re-seed and
			// schedule the next one inside the same transaction.
			if event.Kind == models.EventKindGame &&
				models.SeasonType(payloadString(event.Payload, "season_type")) == models.SeasonTypePlayoffs {
				if _, _, err := d.playoffs.AdvanceBracket(txCtx, state.DynastyID, state.Season); err != nil {
					return err
				}
			}
			return nil
		})
		if txErr == nil {
			executed++
			continue
		}

		if isIsolatedFailure(txErr) {
			failed++
			d.logger.Warnf("Event %s failed, day continues: %v", event.StructuredID, txErr)
			if markErr := d.store.Events().MarkExecuted(ctx, event.EventID,
				map[string]interface{}{"error": txErr.Error()}, models.EventStatusFailed); markErr != nil {
				return executed, failed, markErr
			}
			continue
		}
		return executed, failed, txErr
	}
	return executed, failed, nil
}

// isIsolatedFailure separates per-event failures (bad transaction, sim
// error) from failures that poison the whole advance (persistence).
func isIsolatedFailure(err error) bool {
	var invalid *models.InvalidTransactionError
	var sim *models.SimulatorError
	var cap *models.CapViolationError
	return errors.As(err, &invalid) || errors.As(err, &sim) || errors.As(err, &cap)
}

func (d *EventDispatcher) execute(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	switch event.Kind {
	case models.EventKindGame:
		record, err := d.games.ExecuteGame(ctx, event, state.Season)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"home_score": record.HomeScore,
			"away_score": record.AwayScore,
		}, nil
	case models.EventKindTrade:
		return d.executeTrade(ctx, event, state)
	case models.EventKindSigning:
		return d.executeSigning(ctx, event, state)
	case models.EventKindRelease:
		return d.executeRelease(ctx, event, state)
	case models.EventKindRestructure:
		return d.executeRestructure(ctx, event, state)
	case models.EventKindFranchiseTag:
		return d.executeTag(ctx, event, state)
	case models.EventKindFAWaveTick:
		wave, err := payloadInt(event.Payload, "wave")
		if err != nil {
			return nil, err
		}
		// The league year has already rolled on the cap side; free agents
		// sign for the upcoming season.
		signed, err := d.freeAgency.RunWave(ctx, event.DynastyID, state.Season+1, wave, state.Phase, event.Date)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"signings": signed}, nil
	case models.EventKindDraftPick:
		rookie, err := d.draft.ExecutePick(ctx, event, state.Season)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"player_id": rookie.PlayerID,
			"position":  string(rookie.Position),
			"overall":   rookie.Overall,
		}, nil
	case models.EventKindRetirementCheck:
		retired, err := d.retirement.ProcessRetirements(ctx, event.DynastyID, state.Season, event.Date)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"retired": len(retired)}, nil
	case models.EventKindDeadline:
		return d.executeDeadline(ctx, event, state)
	case models.EventKindPhaseHook:
		if d.hooks == nil {
			return nil, fmt.Errorf("no hook handler installed")
		}
		return d.hooks(ctx, event, state)
	default:
		return nil, fmt.Errorf("unknown event kind %s", event.Kind)
	}
}

func (d *EventDispatcher) executeTrade(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	raw := payloadString(event.Payload, "proposal_json")
	if raw == "" {
		return nil, fmt.Errorf("trade event %s has no proposal", event.StructuredID)
	}
	var proposal models.TradeProposal
	if err := json.Unmarshal([]byte(raw), &proposal); err != nil {
		return nil, fmt.Errorf("decoding trade proposal: %w", err)
	}
	proposal.DynastyID = event.DynastyID
	if err := d.transactions.ExecuteTrade(ctx, proposal, state.Season, state.Phase, event.Date); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"team_a": proposal.SideA.TeamID,
		"team_b": proposal.SideB.TeamID,
	}, nil
}

func (d *EventDispatcher) executeSigning(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	playerID, err := payloadInt(event.Payload, "player_id")
	if err != nil {
		return nil, err
	}
	teamID, err := payloadInt(event.Payload, "team_id")
	if err != nil {
		return nil, err
	}
	years, err := payloadInt(event.Payload, "years")
	if err != nil {
		return nil, err
	}
	total, err := payloadInt64(event.Payload, "total_value")
	if err != nil {
		return nil, err
	}
	bonus, err := payloadInt64(event.Payload, "signing_bonus")
	if err != nil {
		return nil, err
	}
	if err := d.transactions.ExecuteSigning(ctx, event.DynastyID, playerID, teamID, years, total, bonus, state.Season, state.Phase, event.Date); err != nil {
		return nil, err
	}
	return map[string]interface{}{"player_id": playerID, "team_id": teamID}, nil
}

func (d *EventDispatcher) executeRelease(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	playerID, err := payloadInt(event.Payload, "player_id")
	if err != nil {
		return nil, err
	}
	postJune1 := payloadBool(event.Payload, "post_june_1")
	if err := d.transactions.ExecuteRelease(ctx, event.DynastyID, playerID, state.Season, state.Phase, event.Date, postJune1); err != nil {
		return nil, err
	}
	return map[string]interface{}{"player_id": playerID}, nil
}

func (d *EventDispatcher) executeRestructure(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	playerID, err := payloadInt(event.Payload, "player_id")
	if err != nil {
		return nil, err
	}
	if err := d.transactions.ExecuteRestructure(ctx, event.DynastyID, playerID, state.Season, event.Date); err != nil {
		return nil, err
	}
	return map[string]interface{}{"player_id": playerID}, nil
}

func (d *EventDispatcher) executeTag(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	playerID, err := payloadInt(event.Payload, "player_id")
	if err != nil {
		return nil, err
	}
	teamID, err := payloadInt(event.Payload, "team_id")
	if err != nil {
		return nil, err
	}
	if err := d.transactions.ExecuteTag(ctx, event.DynastyID, playerID, teamID, state.Season, state.Phase, event.Date); err != nil {
		return nil, err
	}
	return map[string]interface{}{"player_id": playerID, "team_id": teamID}, nil
}

func (d *EventDispatcher) executeDeadline(ctx context.Context, event *models.Event, state *models.DynastyState) (map[string]interface{}, error) {
	name := payloadString(event.Payload, "deadline")
	switch name {
	case "trade_deadline":
		// The validator enforces the date on every trade; the event is the
		// auditable marker that the window closed.
		return map[string]interface{}{"deadline": name}, nil
	case "final_roster":
		if err := d.freeAgency.EnforceFinalRosters(ctx, event.DynastyID, state.Season, state.Phase, event.Date); err != nil {
			return nil, err
		}
		return map[string]interface{}{"deadline": name}, nil
	default:
		return nil, fmt.Errorf("unknown deadline %q", name)
	}
}

func payloadBool(payload map[string]interface{}, key string) bool {
	b, _ := payload[key].(bool)
	return b
}

func payloadInt64(payload map[string]interface{}, key string) (int64, error) {
	v, ok := payload[key]
	if !ok {
		return 0, fmt.Errorf("payload missing %q", key)
	}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("payload field %q has type %T", key, v)
	}
}
