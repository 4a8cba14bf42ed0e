package services

import (
	"fmt"
	"sort"
	"time"

	"nfl-dynasty-go/logging"
	"nfl-dynasty-go/models"
)

// ScheduledGame is one generated fixture before it becomes a GAME event.
type ScheduledGame struct {
	StructuredID string
	Season       int
	Week         int
	SeasonType   models.SeasonType
	GameType     models.GameType
	Date         time.Time
	HomeTeamID   int
	AwayTeamID   int
}

// ScheduleService builds the league schedule. The regular season is 272
// games over 18 weeks: six division games, four against a rotating
// same-conference division, four against a rotating cross-conference
// division, two same-slot games against the remaining same-conference
// divisions and one extra cross-conference same-slot game. Byes land in
// weeks 6-13, one full division at a time, so every team sits exactly once.
type ScheduleService struct {
	logger *logging.Logger
}

func NewScheduleService() *ScheduleService {
	return &ScheduleService{logger: logging.WithPrefix("schedule")}
}

// divisionSlots returns team ids for [conference][division][slot]. Team ids
// are laid out AFC 1..16 then NFC 17..32, East/North/South/West in blocks of
// four.
func divisionSlots() [2][4][4]int {
	var slots [2][4][4]int
	for conf := 0; conf < 2; conf++ {
		for div := 0; div < 4; div++ {
			for i := 0; i < 4; i++ {
				slots[conf][div][i] = conf*16 + div*4 + i + 1
			}
		}
	}
	return slots
}

// intraPartitions are the three ways to pair four divisions for the rotating
// four-game series. The season year picks the rotation.
var intraPartitions = [3][2][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

// divisionRounds is a 4-team round robin; rounds 4-6 replay rounds 1-3 with
// venues flipped.
var divisionRounds = [3][2][2]int{
	{{0, 3}, {1, 2}},
	{{0, 2}, {3, 1}},
	{{0, 1}, {2, 3}},
}

type matchup struct {
	home int
	away int
}

func internalRound(teams [4]int, round int) []matchup {
	base := divisionRounds[(round-1)%3]
	flip := round > 3
	games := make([]matchup, 0, 2)
	for _, pair := range base {
		h, a := teams[pair[0]], teams[pair[1]]
		if flip {
			h, a = a, h
		}
		games = append(games, matchup{home: h, away: a})
	}
	return games
}

// crossRound plays one round of a full 16-game series between divisions X
// and Y: X[i] meets Y[(i+round-1)%4]. Venue parity flips halfway through the
// series so every team ends with two home and two away games.
func crossRound(x, y [4]int, round int) []matchup {
	games := make([]matchup, 0, 4)
	for i := 0; i < 4; i++ {
		j := (i + round - 1) % 4
		xHome := (i+round)%2 == 0
		if round >= 3 {
			xHome = !xHome
		}
		if xHome {
			games = append(games, matchup{home: x[i], away: y[j]})
		} else {
			games = append(games, matchup{home: y[j], away: x[i]})
		}
	}
	return games
}

// sameSlotGames pairs same-slot teams of two divisions, alternating venue.
func sameSlotGames(x, y [4]int, xHomeOnEven bool) []matchup {
	games := make([]matchup, 0, 4)
	for i := 0; i < 4; i++ {
		xHome := (i%2 == 0) == xHomeOnEven
		if xHome {
			games = append(games, matchup{home: x[i], away: y[i]})
		} else {
			games = append(games, matchup{home: y[i], away: x[i]})
		}
	}
	return games
}

// byeWindowWeek describes one week of the weeks 6-13 template for a group of
// four divisions (two paired AFC divisions and their cross-conference
// partners). Engagement kinds: "int" (division round 6), "intra" (rotating
// same-conference round), "inter" (cross-conference round).
type engagement struct {
	kind  string
	first int // group slot: 0=a, 1=b, 2=c, 3=d
	secnd int
	round int
}

// Group slots: a and b are the paired AFC divisions, c and d their
// cross-conference partners. templateLate byes a,b,c,d in relative weeks
// 2,4,6,8; templateEarly in 1,3,5,7.
var templateLate = [8][]engagement{
	{{"intra", 0, 1, 1}, {"intra", 2, 3, 1}},
	{{"inter", 1, 3, 1}, {"int", 2, 0, 6}},
	{{"intra", 0, 1, 2}, {"intra", 2, 3, 2}},
	{{"inter", 0, 2, 1}, {"int", 3, 0, 6}},
	{{"intra", 0, 1, 3}, {"intra", 2, 3, 3}},
	{{"int", 0, 0, 6}, {"inter", 1, 3, 2}},
	{{"intra", 0, 1, 4}, {"intra", 2, 3, 4}},
	{{"inter", 0, 2, 2}, {"int", 1, 0, 6}},
}

var templateEarly = [8][]engagement{
	{{"inter", 1, 3, 1}, {"int", 2, 0, 6}},
	{{"intra", 0, 1, 1}, {"intra", 2, 3, 1}},
	{{"inter", 0, 2, 1}, {"int", 3, 0, 6}},
	{{"intra", 0, 1, 2}, {"intra", 2, 3, 2}},
	{{"int", 0, 0, 6}, {"inter", 1, 3, 2}},
	{{"intra", 0, 1, 3}, {"intra", 2, 3, 3}},
	{{"inter", 0, 2, 2}, {"int", 1, 0, 6}},
	{{"intra", 0, 1, 4}, {"intra", 2, 3, 4}},
}

// RegularSeasonGames builds the full deterministic 272-game slate for a
// season. The same season always yields the same schedule.
func (s *ScheduleService) RegularSeasonGames(season int) []ScheduledGame {
	slots := divisionSlots()
	partition := intraPartitions[((season%3)+3)%3]
	interPartner := func(afcDiv int) int { return ((afcDiv + season) % 4 + 4) % 4 }

	weeks := make([][]matchup, RegularSeasonWeeks+1)

	// Weeks 1-5: division rounds 1-5 for all eight divisions.
	for w := 1; w <= 5; w++ {
		for conf := 0; conf < 2; conf++ {
			for div := 0; div < 4; div++ {
				weeks[w] = append(weeks[w], internalRound(slots[conf][div], w)...)
			}
		}
	}

	// Weeks 6-13: the bye window. Each group of four divisions runs its
	// eight-week template; the two groups stagger byes so four teams sit
	// each week.
	for g := 0; g < 2; g++ {
		afcA, afcB := partition[g][0], partition[g][1]
		group := [4][4]int{
			slots[0][afcA],
			slots[0][afcB],
			slots[1][interPartner(afcA)],
			slots[1][interPartner(afcB)],
		}
		groupConf := [4]int{0, 0, 1, 1}
		template := templateLate
		if g == 1 {
			template = templateEarly
		}
		for rel := 0; rel < 8; rel++ {
			week := 6 + rel
			for _, e := range template[rel] {
				switch e.kind {
				case "int":
					weeks[week] = append(weeks[week], internalRound(group[e.first], e.round)...)
				case "intra":
					weeks[week] = append(weeks[week], crossRound(group[e.first], group[e.secnd], e.round)...)
				case "inter":
					// AFC hosts the odd rounds of the cross-conference series.
					x, y := group[e.first], group[e.secnd]
					if groupConf[e.first] == 1 {
						x, y = y, x
					}
					weeks[week] = append(weeks[week], crossRound(x, y, e.round)...)
				}
			}
		}
	}

	// Weeks 14-15: cross-conference rounds 3-4 for all four pairings.
	for r := 3; r <= 4; r++ {
		week := 11 + r
		for afcDiv := 0; afcDiv < 4; afcDiv++ {
			weeks[week] = append(weeks[week],
				crossRound(slots[0][afcDiv], slots[1][interPartner(afcDiv)], r)...)
		}
	}

	// Weeks 16-17: same-slot games against the two same-conference
	// divisions outside the rotating pairing. The NFC's rotating pairing is
	// the image of the AFC's under the cross-conference partner map.
	confPairings := [2][2][2]int{
		{partition[0], partition[1]},
		{
			{interPartner(partition[0][0]), interPartner(partition[0][1])},
			{interPartner(partition[1][0]), interPartner(partition[1][1])},
		},
	}
	for slot := 0; slot < 2; slot++ {
		week := 16 + slot
		for conf := 0; conf < 2; conf++ {
			g0, g1 := confPairings[conf][0], confPairings[conf][1]
			var pairs [2][2]int
			if slot == 0 {
				pairs = [2][2]int{{g0[0], g1[0]}, {g0[1], g1[1]}}
			} else {
				pairs = [2][2]int{{g0[0], g1[1]}, {g0[1], g1[0]}}
			}
			for _, pair := range pairs {
				weeks[week] = append(weeks[week],
					sameSlotGames(slots[conf][pair[0]], slots[conf][pair[1]], slot == 0)...)
			}
		}
	}

	// Week 18: the seventeenth game, cross-conference same-slot against the
	// division one step past the rotating partner. Home conference alternates
	// by year.
	for afcDiv := 0; afcDiv < 4; afcDiv++ {
		nfcDiv := ((afcDiv+season+1)%4 + 4) % 4
		weeks[18] = append(weeks[18],
			sameSlotGames(slots[0][afcDiv], slots[1][nfcDiv], season%2 == 0)...)
	}

	return s.stamp(season, weeks, models.SeasonTypeRegular, models.GameTypeRegular)
}

// PreseasonGames builds the three-week 48-game preseason slate.
func (s *ScheduleService) PreseasonGames(season int) []ScheduledGame {
	weeks := make([][]matchup, PreseasonWeeks+1)
	for i := 1; i <= 16; i++ {
		weeks[1] = append(weeks[1], matchup{home: i, away: 33 - i})
	}
	for conf := 0; conf < 2; conf++ {
		base := conf * 16
		for i := 1; i <= 8; i++ {
			weeks[2] = append(weeks[2], matchup{home: base + i, away: base + 17 - i})
		}
		// East hosts West, North hosts South.
		for i := 1; i <= 4; i++ {
			weeks[3] = append(weeks[3],
				matchup{home: base + i, away: base + 12 + i},
				matchup{home: base + 4 + i, away: base + 8 + i})
		}
	}
	games := make([]ScheduledGame, 0, 48)
	for w := 1; w <= PreseasonWeeks; w++ {
		start := PreseasonWeekStart(season, w)
		sort.Slice(weeks[w], func(i, j int) bool { return weeks[w][i].home < weeks[w][j].home })
		for n, m := range weeks[w] {
			games = append(games, ScheduledGame{
				StructuredID: fmt.Sprintf("preseason_%d_week_%d_%d", season, w, n+1),
				Season:       season,
				Week:         w,
				SeasonType:   models.SeasonTypeRegular,
				GameType:     models.GameTypePreseason,
				Date:         gameDate(start, n, len(weeks[w])),
				HomeTeamID:   m.home,
				AwayTeamID:   m.away,
			})
		}
	}
	return games
}

// stamp orders each week deterministically, assigns structured ids and
// spreads games across Thursday, Sunday and Monday of the week.
func (s *ScheduleService) stamp(season int, weeks [][]matchup, seasonType models.SeasonType, gameType models.GameType) []ScheduledGame {
	var games []ScheduledGame
	for w := 1; w < len(weeks); w++ {
		start := WeekStart(season, w)
		sort.Slice(weeks[w], func(i, j int) bool { return weeks[w][i].home < weeks[w][j].home })
		for n, m := range weeks[w] {
			games = append(games, ScheduledGame{
				StructuredID: models.StructuredID("game", season, fmt.Sprintf("week_%d", w), n+1),
				Season:       season,
				Week:         w,
				SeasonType:   seasonType,
				GameType:     gameType,
				Date:         gameDate(start, n, len(weeks[w])),
				HomeTeamID:   m.home,
				AwayTeamID:   m.away,
			})
		}
	}
	s.logger.Debugf("Generated %d games for season %d", len(games), season)
	return games
}

// gameDate places the first game of a week on Thursday, the last on Monday
// night and everything else on Sunday.
func gameDate(weekStart time.Time, index, total int) time.Time {
	switch {
	case index == 0:
		return weekStart
	case index == total-1:
		return weekStart.AddDate(0, 0, 4)
	default:
		return weekStart.AddDate(0, 0, 3)
	}
}

// TeamSchedules maps team id to its opponents in game order, the input to
// strength-of-schedule tiebreaking.
func TeamSchedules(games []ScheduledGame) map[int][]int {
	byTeam := make(map[int][]ScheduledGame)
	for _, g := range games {
		byTeam[g.HomeTeamID] = append(byTeam[g.HomeTeamID], g)
		byTeam[g.AwayTeamID] = append(byTeam[g.AwayTeamID], g)
	}
	schedules := make(map[int][]int, len(byTeam))
	for team, teamGames := range byTeam {
		sort.Slice(teamGames, func(i, j int) bool { return teamGames[i].Week < teamGames[j].Week })
		for _, g := range teamGames {
			opp := g.HomeTeamID
			if opp == team {
				opp = g.AwayTeamID
			}
			schedules[team] = append(schedules[team], opp)
		}
	}
	return schedules
}
