package push

import (
	"context"

	"github.com/clubops/session-system/models"
)

// Payload — подготовленный текст уведомления. Диспетчер собирает его и
// дальше не интерпретирует.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// Sender доставляет payload одной подписке. Доставка считается внешней
// способностью: повторная доставка допустима, потерянная — логируется,
// но не повторяется.
type Sender interface {
	Send(ctx context.Context, sub models.Subscription, payload Payload) error
}
