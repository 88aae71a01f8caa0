package football_nfl

// stadium holds home-venue metadata used for weather classification.
// Retractable-roof stadiums count as domes: weather never reaches the field.
type stadium struct {
	Name     string
	Dome     bool
	Lat, Lon float64
}

// stadiums maps normalized home team name to its venue.
var stadiums = map[string]stadium{
	"Arizona Cardinals":     {"State Farm Stadium", true, 33.5276, -112.2626},
	"Atlanta Falcons":       {"Mercedes-Benz Stadium", true, 33.7554, -84.4010},
	"Baltimore Ravens":      {"M&T Bank Stadium", false, 39.2780, -76.6227},
	"Buffalo Bills":         {"Highmark Stadium", false, 42.7738, -78.7870},
	"Carolina Panthers":     {"Bank of America Stadium", false, 35.2258, -80.8528},
	"Chicago Bears":         {"Soldier Field", false, 41.8623, -87.6167},
	"Cincinnati Bengals":    {"Paycor Stadium", false, 39.0954, -84.5160},
	"Cleveland Browns":      {"Huntington Bank Field", false, 41.5061, -81.6995},
	"Dallas Cowboys":        {"AT&T Stadium", true, 32.7473, -97.0945},
	"Denver Broncos":        {"Empower Field at Mile High", false, 39.7439, -105.0201},
	"Detroit Lions":         {"Ford Field", true, 42.3400, -83.0456},
	"Green Bay Packers":     {"Lambeau Field", false, 44.5013, -88.0622},
	"Houston Texans":        {"NRG Stadium", true, 29.6847, -95.4107},
	"Indianapolis Colts":    {"Lucas Oil Stadium", true, 39.7601, -86.1639},
	"Jacksonville Jaguars":  {"EverBank Stadium", false, 30.3240, -81.6373},
	"Kansas City Chiefs":    {"GEHA Field at Arrowhead Stadium", false, 39.0489, -94.4839},
	"Las Vegas Raiders":     {"Allegiant Stadium", true, 36.0909, -115.1833},
	"Los Angeles Chargers":  {"SoFi Stadium", true, 33.9535, -118.3392},
	"Los Angeles Rams":      {"SoFi Stadium", true, 33.9535, -118.3392},
	"Miami Dolphins":        {"Hard Rock Stadium", false, 25.9580, -80.2389},
	"Minnesota Vikings":     {"U.S. Bank Stadium", true, 44.9736, -93.2575},
	"New England Patriots":  {"Gillette Stadium", false, 42.0909, -71.2643},
	"New Orleans Saints":    {"Caesars Superdome", true, 29.9511, -90.0812},
	"New York Giants":       {"MetLife Stadium", false, 40.8135, -74.0745},
	"New York Jets":         {"MetLife Stadium", false, 40.8135, -74.0745},
	"Philadelphia Eagles":   {"Lincoln Financial Field", false, 39.9008, -75.1675},
	"Pittsburgh Steelers":   {"Acrisure Stadium", false, 40.4468, -80.0158},
	"San Francisco 49ers":   {"Levi's Stadium", false, 37.4030, -121.9696},
	"Seattle Seahawks":      {"Lumen Field", false, 47.5952, -122.3316},
	"Tampa Bay Buccaneers":  {"Raymond James Stadium", false, 27.9759, -82.5033},
	"Tennessee Titans":      {"Nissan Stadium", false, 36.1665, -86.7713},
	"Washington Commanders": {"Northwest Stadium", false, 38.9077, -76.8645},
}

// VenueFor returns the home stadium and dome flag for a team.
// Unknown teams (international games, vendor typos) are treated as
// outdoor with an empty venue so they still enter weather aggregates.
func VenueFor(homeTeam string) (string, bool) {
	s, ok := stadiums[NormalizeTeamName(homeTeam)]
	if !ok {
		return "", false
	}
	return s.Name, s.Dome
}

// VenueCoords returns the stadium coordinates for a home team.
// ok is false for unknown teams and neutral sites.
func VenueCoords(homeTeam string) (lat, lon float64, ok bool) {
	s, found := stadiums[NormalizeTeamName(homeTeam)]
	if !found {
		return 0, 0, false
	}
	return s.Lat, s.Lon, true
}
