package teams

import (
	"github.com/clubops/session-system/models"
)

// UnevenBalancedGenerator делит состав на «верхнюю» и «нижнюю» скобки.
// Работает только при ровно четырёх вычисленных командах. Сильнейшая половина
// (ceil(n/2) игроков) жадно распределяется между командами 1 и 2, оставшиеся —
// между командами 3 и 4. Команды 1–2 сбалансированы между собой и в сумме
// сильнее команд 3–4, которые сбалансированы между собой.
type UnevenBalancedGenerator struct{}

func NewUnevenBalancedGenerator() Generator {
	return &UnevenBalancedGenerator{}
}

func (g *UnevenBalancedGenerator) GetName() string {
	return "uneven-balanced"
}

func (g *UnevenBalancedGenerator) MakeTeams(players []models.Player, teamSize int) ([][]models.Player, error) {
	numTeams, err := numTeamsFor(len(players), teamSize)
	if err != nil {
		return nil, err
	}
	if numTeams != 4 {
		return nil, ErrUnevenTeamCount
	}

	pool := sortBySkillDesc(players)
	n := len(pool)
	upperCount := (n + 1) / 2

	result := make([][]models.Player, 4)
	sums := make([]int, 4)
	for i := range result {
		result[i] = make([]models.Player, 0, teamSize)
	}

	upperIndexes := []int{0, 1}
	for _, player := range pool[:upperCount] {
		t := pickLowestSum(result, sums, upperIndexes)
		result[t] = append(result[t], player)
		sums[t] += player.Skill
	}

	lowerIndexes := []int{2, 3}
	for _, player := range pool[upperCount:] {
		t := pickLowestSum(result, sums, lowerIndexes)
		result[t] = append(result[t], player)
		sums[t] += player.Skill
	}
	return result, nil
}
