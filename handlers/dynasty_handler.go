package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
	"nfl-dynasty-go/services"

	"github.com/gorilla/mux"
)

// DynastyHandler serves dynasty lifecycle and calendar-advance endpoints.
// Advances are commissioner-only and drive the whole simulation.
type DynastyHandler struct {
	store      interfaces.LeagueStore
	seeder     *services.DynastySeedService
	controller *services.LeagueController
	seasonYear int
	logger     *logging.Logger
}

func NewDynastyHandler(store interfaces.LeagueStore, seeder *services.DynastySeedService, controller *services.LeagueController, seasonYear int) *DynastyHandler {
	return &DynastyHandler{
		store:      store,
		seeder:     seeder,
		controller: controller,
		seasonYear: seasonYear,
		logger:     logging.WithPrefix("api"),
	}
}

type createDynastyRequest struct {
	DynastyID string `json:"dynastyId"`
	Name      string `json:"name"`
	Season    int    `json:"season"`
}

// Create seeds a new dynasty: rosters, contracts, cap sheets and the state
// row parked before training camp.
func (h *DynastyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDynastyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DynastyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "dynastyId is required"})
		return
	}
	if req.Name == "" {
		req.Name = req.DynastyID
	}
	if req.Season == 0 {
		req.Season = h.seasonYear
	}

	if err := h.seeder.Seed(r.Context(), req.DynastyID, req.Name, req.Season); err != nil {
		writeError(w, err)
		return
	}
	state, err := h.store.Dynasties().GetState(r.Context(), req.DynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Infof("Dynasty %s created for season %d", req.DynastyID, req.Season)
	writeJSON(w, http.StatusCreated, state)
}

// State returns the dynasty's calendar position.
func (h *DynastyHandler) State(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	state, err := h.store.Dynasties().GetState(r.Context(), dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Advance moves the dynasty forward the requested number of days (default 1).
func (h *DynastyHandler) Advance(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	days := queryInt(r, "days", 1)

	report, err := h.controller.AdvanceDays(r.Context(), dynastyID, days)
	if err != nil {
		if report != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":  err.Error(),
				"report": report,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AdvanceWeek moves the dynasty forward seven days.
func (h *DynastyHandler) AdvanceWeek(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	report, err := h.controller.AdvanceWeek(r.Context(), dynastyID)
	if err != nil {
		if report != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":  err.Error(),
				"report": report,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AdvancePhase advances until the current phase ends.
func (h *DynastyHandler) AdvancePhase(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	report, err := h.controller.AdvanceToEndOfPhase(r.Context(), dynastyID, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// AdvanceSeason simulates through the league-year rollover.
func (h *DynastyHandler) AdvanceSeason(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	report, err := h.controller.SimulateToEndOfSeason(r.Context(), dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// transactionRequest is the commissioner's roster-move request. The move is
// scheduled as an event on the dynasty's current date and executes on the
// next advance, exactly like every AI-generated move.
type transactionRequest struct {
	Kind         string                `json:"kind"` // trade | signing | release | restructure | franchise_tag
	Proposal     *models.TradeProposal `json:"proposal,omitempty"`
	PlayerID     int                   `json:"playerId,omitempty"`
	TeamID       int                   `json:"teamId,omitempty"`
	Years        int                   `json:"years,omitempty"`
	TotalValue   int64                 `json:"totalValue,omitempty"`
	SigningBonus int64                 `json:"signingBonus,omitempty"`
	PostJune1    bool                  `json:"postJune1,omitempty"`
}

// ScheduleTransaction places a commissioner-initiated move on the calendar.
func (h *DynastyHandler) ScheduleTransaction(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	state, err := h.store.Dynasties().GetState(r.Context(), dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}

	event := &models.Event{
		DynastyID: dynastyID,
		Date:      models.DateOnly(state.CurrentDate),
	}
	switch req.Kind {
	case "trade":
		if req.Proposal == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "trade requires a proposal"})
			return
		}
		req.Proposal.DynastyID = dynastyID
		raw, err := json.Marshal(req.Proposal)
		if err != nil {
			writeError(w, err)
			return
		}
		event.Kind = models.EventKindTrade
		event.StructuredID = models.StructuredID("trade", state.Season,
			fmt.Sprintf("manual_%s", state.CurrentDate.Format("20060102")), req.Proposal.SideA.TeamID)
		event.Payload = map[string]interface{}{"proposal_json": string(raw)}
	case "signing":
		event.Kind = models.EventKindSigning
		event.StructuredID = models.StructuredID("signing", state.Season,
			fmt.Sprintf("manual_%s_player", state.CurrentDate.Format("20060102")), req.PlayerID)
		event.Payload = map[string]interface{}{
			"player_id":     req.PlayerID,
			"team_id":       req.TeamID,
			"years":         req.Years,
			"total_value":   req.TotalValue,
			"signing_bonus": req.SigningBonus,
		}
	case "release":
		event.Kind = models.EventKindRelease
		event.StructuredID = models.StructuredID("release", state.Season,
			fmt.Sprintf("manual_%s_player", state.CurrentDate.Format("20060102")), req.PlayerID)
		event.Payload = map[string]interface{}{"player_id": req.PlayerID, "post_june_1": req.PostJune1}
	case "franchise_tag":
		event.Kind = models.EventKindFranchiseTag
		event.StructuredID = models.StructuredID("tag", state.Season,
			fmt.Sprintf("manual_%s_player", state.CurrentDate.Format("20060102")), req.PlayerID)
		event.Payload = map[string]interface{}{"player_id": req.PlayerID, "team_id": req.TeamID}
	case "restructure":
		event.Kind = models.EventKindRestructure
		event.StructuredID = models.StructuredID("restructure", state.Season,
			fmt.Sprintf("manual_%s_player", state.CurrentDate.Format("20060102")), req.PlayerID)
		event.Payload = map[string]interface{}{"player_id": req.PlayerID}
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown transaction kind %q", req.Kind)})
		return
	}

	eventID, err := h.store.Events().Insert(r.Context(), event)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"eventId":      eventID,
		"structuredId": event.StructuredID,
	})
}
