// Package rating реализует командный Elo-пересчёт: дельта считается на уровне
// команды по средним рейтингам и поровну делится между её игроками.
package rating

import (
	"math"

	"github.com/clubops/session-system/models"
)

// DefaultKFactor — коэффициент волатильности по умолчанию.
const DefaultKFactor = 24

// ratingScale переводит клубный рейтинг на шкалу Elo: один пункт рейтинга
// соответствует десяти пунктам Elo. Команды со средними 60 и 40 играют как
// 600 против 400, ожидание сильнейшей стороны ≈ 0.76.
const ratingScale = 10

// ExpectedScore возвращает ожидаемый результат стороны с рейтингом ra против
// стороны с рейтингом rb по стандартной логистической кривой Elo.
func ExpectedScore(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// AverageSkill возвращает средний рейтинг состава; пустой состав даёт 0.
func AverageSkill(players []models.Player) float64 {
	if len(players) == 0 {
		return 0
	}
	sum := 0
	for _, p := range players {
		sum += p.Skill
	}
	return float64(sum) / float64(len(players))
}

// Scores переводит исход матча в пару фактических результатов.
// Неопознанный победитель считается ничьёй, а не ошибкой.
func Scores(result models.MatchResult) (scoreA, scoreB float64) {
	if result.Draw() {
		return 0.5, 0.5
	}
	if result.Winner == result.TeamA {
		return 1, 0
	}
	return 0, 1
}

// TeamDeltas возвращает командные дельты для обеих сторон одного матча.
// Средние рейтинги команд переводятся на шкалу Elo перед подстановкой в
// логистическую кривую.
func TeamDeltas(avgA, avgB float64, result models.MatchResult, kFactor float64) (deltaA, deltaB float64) {
	expectedA := ExpectedScore(avgA*ratingScale, avgB*ratingScale)
	expectedB := 1 - expectedA
	scoreA, scoreB := Scores(result)
	return kFactor * (scoreA - expectedA), kFactor * (scoreB - expectedB)
}

// PerPlayerDelta делит командную дельту поровну между игроками.
// Размер состава снизу ограничен единицей, чтобы исключить деление на ноль.
func PerPlayerDelta(teamDelta float64, memberCount int) float64 {
	if memberCount < 1 {
		memberCount = 1
	}
	return teamDelta / float64(memberCount)
}

// Accumulator собирает дробные дельты игроков за весь пакет матчей.
// Округление выполняется один раз при выгрузке: игрок, задетый несколькими
// матчами, получает сумму дельт до округления, а не сумму округлений.
type Accumulator struct {
	deltas map[int]float64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{deltas: make(map[int]float64)}
}

func (a *Accumulator) Add(playerID int, delta float64) {
	a.deltas[playerID] += delta
}

// Rounded возвращает накопленные дельты, округлённые до ближайшего целого.
func (a *Accumulator) Rounded() map[int]int {
	rounded := make(map[int]int, len(a.deltas))
	for playerID, delta := range a.deltas {
		rounded[playerID] = int(math.Round(delta))
	}
	return rounded
}

// Len возвращает число игроков, затронутых пакетом.
func (a *Accumulator) Len() int {
	return len(a.deltas)
}
