package teams

import (
	"github.com/clubops/session-system/models"
)

// SnakeGenerator раздаёт отсортированных по убыванию рейтинга игроков
// «змейкой»: прямой проход 1..N, обратный N..1 и так далее. Сила
// распределяется позицией в драфте, а не текущей суммой.
type SnakeGenerator struct{}

func NewSnakeGenerator() Generator {
	return &SnakeGenerator{}
}

func (g *SnakeGenerator) GetName() string {
	return "snake"
}

func (g *SnakeGenerator) MakeTeams(players []models.Player, teamSize int) ([][]models.Player, error) {
	numTeams, err := numTeamsFor(len(players), teamSize)
	if err != nil {
		return nil, err
	}

	pool := sortBySkillDesc(players)
	n := len(pool)

	result := make([][]models.Player, numTeams)
	for i := range result {
		result[i] = make([]models.Player, 0, teamSize)
	}

	forward := true
	idx := 0
	for idx < n {
		if forward {
			for t := 0; t < numTeams && idx < n; t++ {
				result[t] = append(result[t], pool[idx])
				idx++
			}
		} else {
			for t := numTeams - 1; t >= 0 && idx < n; t-- {
				result[t] = append(result[t], pool[idx])
				idx++
			}
		}
		forward = !forward
	}
	return result, nil
}
