package telegoapi

import (
	"context"

	"github.com/mymmrac/telego"
)

// BotAPI defines the subset of the Telegram Bot API the bot uses.
// *telego.Bot satisfies it; tests substitute a mock.
type BotAPI interface {
	GetMe(ctx context.Context) (*telego.User, error)
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
	ForwardMessage(ctx context.Context, params *telego.ForwardMessageParams) (*telego.Message, error)
	EditMessageText(ctx context.Context, params *telego.EditMessageTextParams) (*telego.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *telego.AnswerCallbackQueryParams) error
	SetMyCommands(ctx context.Context, params *telego.SetMyCommandsParams) error
}

var _ BotAPI = (*telego.Bot)(nil)
