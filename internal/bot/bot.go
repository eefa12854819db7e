// Package bot contains the Telegram frontend: command and callback
// handlers, inline keyboards, and reply formatting. It is thin glue over
// the transport SDK; all token custody and flow logic lives in authflow,
// tokenstore, and seedr.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/florianilch/seedrbot/internal/authflow"
	"github.com/florianilch/seedrbot/internal/seedr"
	"github.com/florianilch/seedrbot/internal/tokencipher"
	"github.com/florianilch/seedrbot/internal/tokenstore"
)

// Bot routes Telegram updates to handlers. Handlers never return errors;
// every failure becomes a reply to the user, and nothing terminates the
// process.
type Bot struct {
	api   *tgbot.Bot
	flow  *authflow.Flow
	store tokenstore.Store
	seedr *seedr.Client

	running atomic.Bool
}

// New creates the Bot and registers all handlers.
func New(token string, flow *authflow.Flow, store tokenstore.Store, client *seedr.Client) (*Bot, error) {
	if flow == nil {
		return nil, fmt.Errorf("missing auth flow")
	}
	if store == nil {
		return nil, fmt.Errorf("missing token store")
	}
	if client == nil {
		return nil, fmt.Errorf("missing seedr client")
	}

	b := &Bot{
		flow:  flow,
		store: store,
		seedr: client,
	}

	api, err := tgbot.New(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	b.api = api

	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypePrefix, b.onStart)
	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/folders", tgbot.MatchTypePrefix, b.onFolders)
	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/storage", tgbot.MatchTypePrefix, b.onStorage)
	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/download", tgbot.MatchTypePrefix, b.onDownload)
	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/addmagnet", tgbot.MatchTypePrefix, b.onAddMagnet)
	api.RegisterHandler(tgbot.HandlerTypeMessageText, "/delete", tgbot.MatchTypePrefix, b.onDelete)

	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbConnect, tgbot.MatchTypeExact, b.onConnect)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbCheckAuth, tgbot.MatchTypeExact, b.onCheckAuth)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbCancelAuth, tgbot.MatchTypeExact, b.onCancelAuth)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbUnlink, tgbot.MatchTypeExact, b.onUnlink)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbMainMenu, tgbot.MatchTypeExact, b.onStart)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbListFolders, tgbot.MatchTypeExact, b.onFolders)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbRefreshFolders, tgbot.MatchTypeExact, b.onFolders)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbCheckStorage, tgbot.MatchTypeExact, b.onStorage)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbFolderPrefix, tgbot.MatchTypePrefix, b.onFolderContents)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbRefreshFilesPrefix, tgbot.MatchTypePrefix, b.onFolderContents)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbFilePrefix, tgbot.MatchTypePrefix, b.onFileAction)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbArchivePrefix, tgbot.MatchTypePrefix, b.onDownloadFolder)
	api.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, cbDeleteFilePrefix, tgbot.MatchTypePrefix, b.onDeleteFile)

	return b, nil
}

// Start runs long polling until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	b.running.Store(true)
	defer b.running.Store(false)

	b.api.Start(ctx)
}

// Running reports whether the bot is polling for updates.
func (b *Bot) Running() bool {
	return b.running.Load()
}

// sender extracts the acting user and the chat to reply into. Callback
// queries from inaccessible (too old) messages still carry the user but no
// chat; those replies go to the user's private chat, which for a bot is the
// same id.
func sender(update *models.Update) (userID, chatID int64, ok bool) {
	switch {
	case update.CallbackQuery != nil:
		userID = update.CallbackQuery.From.ID
		chatID = userID
		if msg := update.CallbackQuery.Message.Message; msg != nil {
			chatID = msg.Chat.ID
		}
		return userID, chatID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, true
	default:
		return 0, 0, false
	}
}

// reply sends a message, logging instead of failing when the transport
// rejects it.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if keyboard != nil {
		params.ReplyMarkup = *keyboard
	}

	if _, err := b.api.SendMessage(ctx, params); err != nil {
		slog.WarnContext(ctx, "sending reply failed", "chat_id", chatID, "error", err)
	}
}

// ack answers a callback query so the client stops showing a spinner.
func (b *Bot) ack(ctx context.Context, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	if _, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	}); err != nil {
		slog.WarnContext(ctx, "answering callback failed", "error", err)
	}
}

// token returns the user's stored access token after verifying it against
// the provider. When the user is not usable-linked, a guidance reply is
// sent and ok is false.
func (b *Bot) token(ctx context.Context, userID, chatID int64) (string, bool) {
	token, err := b.store.Get(ctx, userID)
	switch {
	case err == nil:
	case errors.Is(err, tokenstore.ErrNotLinked):
		b.reply(ctx, chatID, "You need to connect your Seedr account first. Use /start to begin.", connectKeyboard())
		return "", false
	case errors.Is(err, tokencipher.ErrDecrypt):
		// Corrupted entry or rotated key: treat as not linked, keep serving
		slog.WarnContext(ctx, "stored token unreadable, treating as not linked", "user_id", userID, "error", err)
		b.reply(ctx, chatID, "Your stored credentials are unreadable. Please reconnect your Seedr account.", connectKeyboard())
		return "", false
	default:
		b.reply(ctx, chatID, "Account error: "+err.Error(), nil)
		return "", false
	}

	if err := b.seedr.TestToken(ctx, token); err != nil {
		b.reply(ctx, chatID, "Your Seedr session has expired. Please reconnect your account.", connectKeyboard())
		return "", false
	}
	return token, true
}
