package models

// Conference identifies one of the two league conferences
type Conference string

const (
	ConferenceAFC Conference = "AFC"
	ConferenceNFC Conference = "NFC"
)

// Division identifies a four-team division within a conference
type Division string

const (
	DivisionEast  Division = "East"
	DivisionNorth Division = "North"
	DivisionSouth Division = "South"
	DivisionWest  Division = "West"
)

// Team represents one of the 32 league franchises. Team identity is
// immutable; per-dynasty, per-season state (standings, cap) lives in its
// own collections keyed by team id.
type Team struct {
	ID           int        `json:"id" bson:"id"`
	Abbreviation string     `json:"abbreviation" bson:"abbreviation"`
	Name         string     `json:"name" bson:"name"`
	Conference   Conference `json:"conference" bson:"conference"`
	Division     Division   `json:"division" bson:"division"`
}

// leagueTeams is the fixed 32-team league alignment. IDs run 1..32 with the
// AFC occupying 1..16 and the NFC 17..32, ordered East/North/South/West.
var leagueTeams = []Team{
	{1, "BUF", "Buffalo Bills", ConferenceAFC, DivisionEast},
	{2, "MIA", "Miami Dolphins", ConferenceAFC, DivisionEast},
	{3, "NE", "New England Patriots", ConferenceAFC, DivisionEast},
	{4, "NYJ", "New York Jets", ConferenceAFC, DivisionEast},
	{5, "BAL", "Baltimore Ravens", ConferenceAFC, DivisionNorth},
	{6, "CIN", "Cincinnati Bengals", ConferenceAFC, DivisionNorth},
	{7, "CLE", "Cleveland Browns", ConferenceAFC, DivisionNorth},
	{8, "PIT", "Pittsburgh Steelers", ConferenceAFC, DivisionNorth},
	{9, "HOU", "Houston Texans", ConferenceAFC, DivisionSouth},
	{10, "IND", "Indianapolis Colts", ConferenceAFC, DivisionSouth},
	{11, "JAX", "Jacksonville Jaguars", ConferenceAFC, DivisionSouth},
	{12, "TEN", "Tennessee Titans", ConferenceAFC, DivisionSouth},
	{13, "DEN", "Denver Broncos", ConferenceAFC, DivisionWest},
	{14, "KC", "Kansas City Chiefs", ConferenceAFC, DivisionWest},
	{15, "LV", "Las Vegas Raiders", ConferenceAFC, DivisionWest},
	{16, "LAC", "Los Angeles Chargers", ConferenceAFC, DivisionWest},
	{17, "DAL", "Dallas Cowboys", ConferenceNFC, DivisionEast},
	{18, "NYG", "New York Giants", ConferenceNFC, DivisionEast},
	{19, "PHI", "Philadelphia Eagles", ConferenceNFC, DivisionEast},
	{20, "WAS", "Washington Commanders", ConferenceNFC, DivisionEast},
	{21, "CHI", "Chicago Bears", ConferenceNFC, DivisionNorth},
	{22, "DET", "Detroit Lions", ConferenceNFC, DivisionNorth},
	{23, "GB", "Green Bay Packers", ConferenceNFC, DivisionNorth},
	{24, "MIN", "Minnesota Vikings", ConferenceNFC, DivisionNorth},
	{25, "ATL", "Atlanta Falcons", ConferenceNFC, DivisionSouth},
	{26, "CAR", "Carolina Panthers", ConferenceNFC, DivisionSouth},
	{27, "NO", "New Orleans Saints", ConferenceNFC, DivisionSouth},
	{28, "TB", "Tampa Bay Buccaneers", ConferenceNFC, DivisionSouth},
	{29, "ARI", "Arizona Cardinals", ConferenceNFC, DivisionWest},
	{30, "LAR", "Los Angeles Rams", ConferenceNFC, DivisionWest},
	{31, "SF", "San Francisco 49ers", ConferenceNFC, DivisionWest},
	{32, "SEA", "Seattle Seahawks", ConferenceNFC, DivisionWest},
}

// NumTeams is the fixed league size.
const NumTeams = 32

// AllTeams returns the fixed league alignment.
func AllTeams() []Team {
	teams := make([]Team, len(leagueTeams))
	copy(teams, leagueTeams)
	return teams
}

// TeamByID looks up a team by its integer id (1..32).
func TeamByID(id int) (Team, bool) {
	if id < 1 || id > len(leagueTeams) {
		return Team{}, false
	}
	return leagueTeams[id-1], true
}

// TeamsInDivision returns the four teams of a conference division.
func TeamsInDivision(conf Conference, div Division) []Team {
	var teams []Team
	for _, t := range leagueTeams {
		if t.Conference == conf && t.Division == div {
			teams = append(teams, t)
		}
	}
	return teams
}

// TeamsInConference returns the sixteen teams of a conference.
func TeamsInConference(conf Conference) []Team {
	var teams []Team
	for _, t := range leagueTeams {
		if t.Conference == conf {
			teams = append(teams, t)
		}
	}
	return teams
}

// SameDivision reports whether two teams share a division.
func SameDivision(a, b int) bool {
	ta, okA := TeamByID(a)
	tb, okB := TeamByID(b)
	return okA && okB && ta.Conference == tb.Conference && ta.Division == tb.Division
}

// SameConference reports whether two teams share a conference.
func SameConference(a, b int) bool {
	ta, okA := TeamByID(a)
	tb, okB := TeamByID(b)
	return okA && okB && ta.Conference == tb.Conference
}
