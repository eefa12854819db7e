package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/florianilch/seedrbot/internal/authflow"
	"github.com/florianilch/seedrbot/internal/seedr"
	"github.com/florianilch/seedrbot/internal/tokencipher"
	"github.com/florianilch/seedrbot/internal/tokenstore"
)

// onStart greets the user. Linked users get the main menu, everyone else
// the connect prompt. Also serves the main_menu callback.
func (b *Bot) onStart(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	if b.linked(ctx, userID) {
		b.reply(ctx, chatID,
			"Welcome back! Your Seedr account is connected.\n\n"+
				"Commands:\n"+
				"/folders - browse your files\n"+
				"/storage - storage usage\n"+
				"/addmagnet <link> - add a magnet link\n"+
				"/download <file id> - get a download link\n"+
				"/delete <file id> - delete a file",
			mainMenuKeyboard())
		return
	}

	b.reply(ctx, chatID,
		"Welcome! This bot gives you access to your Seedr.cc cloud storage.\n\n"+
			"Connect your account to get started.",
		connectKeyboard())
}

// linked reports whether the user has a working stored token, without
// sending any replies.
func (b *Bot) linked(ctx context.Context, userID int64) bool {
	token, err := b.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, tokenstore.ErrNotLinked) && !errors.Is(err, tokencipher.ErrDecrypt) {
			slog.WarnContext(ctx, "reading stored token failed", "user_id", userID, "error", err)
		}
		return false
	}
	return b.seedr.TestToken(ctx, token) == nil
}

// onConnect starts (or restarts) the linking flow.
func (b *Bot) onConnect(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	session, err := b.flow.Begin(ctx, userID)
	if err != nil {
		b.reply(ctx, chatID, "Could not reach Seedr to start linking. Please try again in a moment.", nil)
		return
	}

	b.reply(ctx, chatID,
		fmt.Sprintf("To connect your Seedr account:\n\n"+
			"1. Open %s\n"+
			"2. Enter this code: %s\n"+
			"3. Come back and tap \"I've Entered the Code\"\n\n"+
			"The code is valid for %d minutes.",
			seedr.VerificationURL, session.UserCode, int(authflow.DefaultSessionTTL.Minutes())),
		authKeyboard(seedr.VerificationURL))
}

// onCheckAuth performs one poll of the pending session.
func (b *Bot) onCheckAuth(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	status, err := b.flow.Poll(ctx, userID)
	switch {
	case errors.Is(err, authflow.ErrNoSession):
		b.reply(ctx, chatID, "There is no linking in progress. Start over with /start.", connectKeyboard())
	case errors.Is(err, authflow.ErrSessionExpired):
		b.reply(ctx, chatID, "The code expired before it was entered. Please restart the linking.", connectKeyboard())
	case err != nil:
		b.reply(ctx, chatID, "Linking failed: "+err.Error()+"\n\nPlease start over.", connectKeyboard())
	case status == authflow.StatusLinked:
		b.reply(ctx, chatID, "✅ Your Seedr account is connected!", mainMenuKeyboard())
	default:
		b.reply(ctx, chatID,
			"Not authorized yet. Enter the code on the Seedr devices page, then check again.",
			authKeyboard(seedr.VerificationURL))
	}
}

// onCancelAuth abandons a pending session.
func (b *Bot) onCancelAuth(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	if b.flow.Cancel(ctx, userID) {
		b.reply(ctx, chatID, "Linking cancelled.", connectKeyboard())
		return
	}
	b.reply(ctx, chatID, "There was no linking in progress.", connectKeyboard())
}

// onUnlink clears the stored token. The user's entry is kept as an unlink
// marker; re-connecting overwrites it.
func (b *Bot) onUnlink(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	if err := b.store.Put(ctx, userID, ""); err != nil {
		slog.ErrorContext(ctx, "unlinking failed", "user_id", userID, "error", err)
		b.reply(ctx, chatID, "Could not disconnect your account. Please try again.", nil)
		return
	}
	b.reply(ctx, chatID, "Your Seedr account has been disconnected.", connectKeyboard())
}
