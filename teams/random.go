package teams

import (
	"math/rand"

	"github.com/clubops/session-system/models"
)

// RandomGenerator тасует состав и раздаёт игроков по кругу.
type RandomGenerator struct{}

func NewRandomGenerator() Generator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) GetName() string {
	return "random"
}

func (g *RandomGenerator) MakeTeams(players []models.Player, teamSize int) ([][]models.Player, error) {
	numTeams, err := numTeamsFor(len(players), teamSize)
	if err != nil {
		return nil, err
	}

	pool := make([]models.Player, len(players))
	copy(pool, players)
	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	result := make([][]models.Player, numTeams)
	for i := range result {
		result[i] = make([]models.Player, 0, teamSize)
	}
	for i, player := range pool {
		t := i % numTeams
		result[t] = append(result[t], player)
	}
	return result, nil
}
