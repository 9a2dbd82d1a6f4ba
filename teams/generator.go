package teams

import (
	"errors"
	"fmt"

	"github.com/clubops/session-system/models"
)

var (
	// ErrInvalidTeamSize возвращается при неположительном размере команды.
	ErrInvalidTeamSize = errors.New("team size must be positive")
	// ErrUnevenTeamCount возвращается стратегией uneven-balanced, если
	// вычисленное количество команд не равно четырём.
	ErrUnevenTeamCount = errors.New("uneven-balanced strategy supports exactly 4 teams")
)

// Generator разбивает список игроков на упорядоченные команды. Каждый игрок
// попадает ровно в одну команду, размеры команд отличаются не более чем на
// одного игрока.
type Generator interface {
	MakeTeams(players []models.Player, teamSize int) ([][]models.Player, error)

	GetName() string
}

// DefaultStrategy используется, когда запрошенная стратегия не зарегистрирована.
const DefaultStrategy = "random"

// Фиксированный набор стратегий; привязка по имени без рефлексии.
var registry = map[string]Generator{
	"random":          NewRandomGenerator(),
	"balanced":        NewBalancedGenerator(),
	"snake":           NewSnakeGenerator(),
	"uneven-balanced": NewUnevenBalancedGenerator(),
}

// Resolve возвращает стратегию по имени. Неизвестное имя не ошибка:
// вызывающий получает стратегию по умолчанию.
func Resolve(name string) Generator {
	if g, ok := registry[name]; ok {
		return g
	}
	return registry[DefaultStrategy]
}

// Strategies перечисляет зарегистрированные имена (для ответов API).
func Strategies() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func numTeamsFor(playerCount, teamSize int) (int, error) {
	if teamSize <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTeamSize, teamSize)
	}
	numTeams := (playerCount + teamSize - 1) / teamSize
	if numTeams < 1 {
		numTeams = 1
	}
	return numTeams, nil
}

// pickLowestSum выбирает среди команд с минимальным размером ту, у которой
// наименьшая сумма рейтингов; при равенстве — наименьший индекс. Ограничение
// по размеру держит разницу составов в пределах одного игрока при любых
// распределениях рейтинга.
func pickLowestSum(teams [][]models.Player, sums []int, indexes []int) int {
	minSize := -1
	for _, i := range indexes {
		if minSize == -1 || len(teams[i]) < minSize {
			minSize = len(teams[i])
		}
	}

	best := -1
	for _, i := range indexes {
		if len(teams[i]) != minSize {
			continue
		}
		if best == -1 || sums[i] < sums[best] {
			best = i
		}
	}
	return best
}
