package models

// MatchResult описывает исход одного матча между двумя командами события.
// Не персистится: передаётся пакетом в пересчёт рейтинга и отбрасывается.
// Winner равен TeamA или TeamB; любое другое значение (включая 0)
// трактуется как ничья.
type MatchResult struct {
	TeamA  int `json:"team_a"`
	TeamB  int `json:"team_b"`
	Winner int `json:"winner"`
}

// Draw сообщает, считается ли результат ничьёй.
func (m MatchResult) Draw() bool {
	return m.Winner != m.TeamA && m.Winner != m.TeamB
}
