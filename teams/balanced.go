package teams

import (
	"sort"

	"github.com/clubops/session-system/models"
)

// BalancedGenerator сортирует игроков по убыванию рейтинга и жадно отдаёт
// очередного игрока команде с наименьшей текущей суммой рейтингов.
// Эвристика приблизительно выравнивает суммарную силу команд.
type BalancedGenerator struct{}

func NewBalancedGenerator() Generator {
	return &BalancedGenerator{}
}

func (g *BalancedGenerator) GetName() string {
	return "balanced"
}

func (g *BalancedGenerator) MakeTeams(players []models.Player, teamSize int) ([][]models.Player, error) {
	numTeams, err := numTeamsFor(len(players), teamSize)
	if err != nil {
		return nil, err
	}

	pool := sortBySkillDesc(players)

	result := make([][]models.Player, numTeams)
	sums := make([]int, numTeams)
	indexes := make([]int, numTeams)
	for i := range result {
		result[i] = make([]models.Player, 0, teamSize)
		indexes[i] = i
	}

	for _, player := range pool {
		t := pickLowestSum(result, sums, indexes)
		result[t] = append(result[t], player)
		sums[t] += player.Skill
	}
	return result, nil
}

func sortBySkillDesc(players []models.Player) []models.Player {
	pool := make([]models.Player, len(players))
	copy(pool, players)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Skill > pool[j].Skill
	})
	return pool
}
