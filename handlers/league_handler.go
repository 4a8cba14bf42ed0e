package handlers

import (
	"net/http"
	"sort"
	"time"

	"nfl-dynasty-go/interfaces"
	"nfl-dynasty-go/models"
	"nfl-dynasty-go/services"

	"github.com/gorilla/mux"
)

// LeagueHandler serves the read side of the league: standings, the playoff
// bracket, cap sheets, rosters, stats and history. Everything is scoped to a
// dynasty and keyed by season, defaulting to the dynasty's current season.
type LeagueHandler struct {
	store    interfaces.LeagueStore
	playoffs *services.PlayoffService
}

func NewLeagueHandler(store interfaces.LeagueStore, playoffs *services.PlayoffService) *LeagueHandler {
	return &LeagueHandler{store: store, playoffs: playoffs}
}

// season resolves the requested season, defaulting to the current one.
func (h *LeagueHandler) season(r *http.Request, dynastyID string) (int, error) {
	if s := queryInt(r, "season", 0); s != 0 {
		return s, nil
	}
	state, err := h.store.Dynasties().GetState(r.Context(), dynastyID)
	if err != nil {
		return 0, err
	}
	return state.Season, nil
}

// Standings returns the season's standings grouped by conference, each
// conference ordered by the playoff-seeding tiebreak chain.
func (h *LeagueHandler) Standings(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := h.store.Standings().GetStandings(r.Context(), dynastyID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	split := services.ConferenceStandings(rows)
	for _, conf := range split {
		services.RankStandings(conf)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":    season,
		"standings": split,
	})
}

// Bracket returns the playoff bracket with results for played slots.
func (h *LeagueHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	bracket, err := h.playoffs.Bracket(r.Context(), dynastyID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":  season,
		"bracket": bracket,
	})
}

// CapSummary returns every team's cap sheet for the season.
func (h *LeagueHandler) CapSummary(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := h.store.Cap().CapRecordsBySeason(r.Context(), dynastyID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	sort.Slice(records, func(i, j int) bool { return records[i].TeamID < records[j].TeamID })
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season": season,
		"teams":  records,
	})
}

// TeamCap returns one team's cap sheet plus its transaction ledger.
func (h *LeagueHandler) TeamCap(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	teamID, ok := pathInt(r, "teamID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid team id"})
		return
	}
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := h.store.Cap().GetCapRecord(r.Context(), dynastyID, teamID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	ledger, err := h.store.Cap().CapTransactions(r.Context(), dynastyID, teamID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":       record,
		"capSpace":     record.CapSpace(),
		"compliant":    record.IsCompliant(),
		"transactions": ledger,
	})
}

// TeamRoster returns the team's active players ordered best-first.
func (h *LeagueHandler) TeamRoster(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	teamID, ok := pathInt(r, "teamID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid team id"})
		return
	}
	roster, err := h.store.Players().TeamRoster(r.Context(), dynastyID, teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	sort.Slice(roster, func(i, j int) bool {
		if roster[i].Overall != roster[j].Overall {
			return roster[i].Overall > roster[j].Overall
		}
		return roster[i].PlayerID < roster[j].PlayerID
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teamId": teamID,
		"roster": roster,
	})
}

// TeamContracts returns the team's active contracts.
func (h *LeagueHandler) TeamContracts(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	teamID, ok := pathInt(r, "teamID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid team id"})
		return
	}
	contracts, err := h.store.Contracts().ActiveContractsByTeam(r.Context(), dynastyID, teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teamId":    teamID,
		"contracts": contracts,
	})
}

// TeamPicks returns the draft pick assets the team currently owns.
func (h *LeagueHandler) TeamPicks(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	teamID, ok := pathInt(r, "teamID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid team id"})
		return
	}
	picks, err := h.store.Picks().PicksByOwner(r.Context(), dynastyID, teamID)
	if err != nil {
		writeError(w, err)
		return
	}
	sort.Slice(picks, func(i, j int) bool {
		if picks[i].Season != picks[j].Season {
			return picks[i].Season < picks[j].Season
		}
		if picks[i].Round != picks[j].Round {
			return picks[i].Round < picks[j].Round
		}
		return picks[i].OriginTeamID < picks[j].OriginTeamID
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"teamId": teamID,
		"picks":  picks,
	})
}

// statExtractors maps the leaders endpoint's stat names onto the stat line.
var statExtractors = map[string]func(models.StatLine) int{
	"pass_yards":        func(l models.StatLine) int { return l.PassYards },
	"pass_tds":          func(l models.StatLine) int { return l.PassTDs },
	"rush_yards":        func(l models.StatLine) int { return l.RushYards },
	"rush_tds":          func(l models.StatLine) int { return l.RushTDs },
	"receiving_yards":   func(l models.StatLine) int { return l.ReceivingYards },
	"receiving_tds":     func(l models.StatLine) int { return l.ReceivingTDs },
	"receptions":        func(l models.StatLine) int { return l.Receptions },
	"sacks":             func(l models.StatLine) int { return l.Sacks },
	"interceptions":     func(l models.StatLine) int { return l.DefInterceptions },
	"tackles":           func(l models.StatLine) int { return l.Tackles },
	"field_goals":       func(l models.StatLine) int { return l.FieldGoalsMade },
}

// StatLeaders returns the top players for one stat category.
func (h *LeagueHandler) StatLeaders(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	stat := r.URL.Query().Get("stat")
	extract, ok := statExtractors[stat]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown stat; try pass_yards, rush_yards, sacks, ..."})
		return
	}
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	limit := queryInt(r, "limit", 10)

	stats, err := h.store.Games().SeasonStats(r.Context(), dynastyID, season, models.SeasonTypeRegular)
	if err != nil {
		writeError(w, err)
		return
	}
	sort.Slice(stats, func(i, j int) bool {
		vi, vj := extract(stats[i].Line), extract(stats[j].Line)
		if vi != vj {
			return vi > vj
		}
		return stats[i].PlayerID < stats[j].PlayerID
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":  season,
		"stat":    stat,
		"leaders": stats,
	})
}

// Honors returns the season's champion, MVP and retirement class.
func (h *LeagueHandler) Honors(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	honors, err := h.store.Careers().GetSeasonHonors(r.Context(), dynastyID, season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, honors)
}

// Career returns a retired player's career rollup.
func (h *LeagueHandler) Career(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	playerID, ok := pathInt(r, "playerID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid player id"})
		return
	}
	summary, err := h.store.Careers().GetCareerSummary(r.Context(), dynastyID, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Games returns the season's played games, optionally filtered by type.
func (h *LeagueHandler) Games(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	season, err := h.season(r, dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	seasonType := models.SeasonType(r.URL.Query().Get("type"))
	if seasonType == "" {
		seasonType = models.SeasonTypeRegular
	}
	games, err := h.store.Games().GamesBySeason(r.Context(), dynastyID, season, seasonType)
	if err != nil {
		writeError(w, err)
		return
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].Date.Equal(games[j].Date) {
			return games[i].Date.Before(games[j].Date)
		}
		return games[i].GameID < games[j].GameID
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season": season,
		"games":  games,
	})
}

// Events returns the calendar window around the dynasty's current date, the
// feed a front end renders as the upcoming schedule.
func (h *LeagueHandler) Events(w http.ResponseWriter, r *http.Request) {
	dynastyID := mux.Vars(r)["dynastyID"]
	state, err := h.store.Dynasties().GetState(r.Context(), dynastyID)
	if err != nil {
		writeError(w, err)
		return
	}
	back := queryInt(r, "back", 3)
	ahead := queryInt(r, "ahead", 14)
	from := models.DateOnly(state.CurrentDate).AddDate(0, 0, -back)
	to := models.DateOnly(state.CurrentDate).AddDate(0, 0, ahead)

	events, err := h.store.Events().EventsForDateRange(r.Context(), dynastyID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"from":   from.Format(time.DateOnly),
		"to":     to.Format(time.DateOnly),
		"events": events,
	})
}
