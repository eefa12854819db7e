package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// onFolders lists the root folder. Also serves the list_folders and
// refresh_folders callbacks.
func (b *Bot) onFolders(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}
	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	contents, err := b.seedr.ListContents(ctx, token, "")
	if err != nil {
		b.reply(ctx, chatID, "Could not list your folders: "+err.Error(), nil)
		return
	}

	if len(contents.Folders) == 0 && len(contents.Files) == 0 {
		b.reply(ctx, chatID, "Your Seedr space is empty. Add something with /addmagnet.", mainMenuKeyboard())
		return
	}

	text := "📁 Your folders"
	if len(contents.Files) > 0 {
		text = fmt.Sprintf("📁 Your folders (%d files in root)", len(contents.Files))
	}
	b.reply(ctx, chatID, text, folderListKeyboard(contents.Folders))
}

// onFolderContents lists one folder. Serves the folder_ and refresh_files_
// callbacks.
func (b *Bot) onFolderContents(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok || update.CallbackQuery == nil {
		return
	}

	data := update.CallbackQuery.Data
	folderID, ok := strings.CutPrefix(data, cbRefreshFilesPrefix)
	if !ok {
		folderID, ok = strings.CutPrefix(data, cbFolderPrefix)
	}
	if !ok || folderID == "" {
		slog.WarnContext(ctx, "malformed folder callback", "data", data)
		return
	}

	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	contents, err := b.seedr.ListContents(ctx, token, folderID)
	if err != nil {
		b.reply(ctx, chatID, "Could not open the folder: "+err.Error(), nil)
		return
	}

	text := fmt.Sprintf("📁 %s\n%d files", contents.Name, len(contents.Files))
	b.reply(ctx, chatID, text, folderContentsKeyboard(folderID, contents))
}

// onFileAction resolves a download link for a tapped file.
func (b *Bot) onFileAction(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok || update.CallbackQuery == nil {
		return
	}

	fileID, folderID, err := parseFileCallback(update.CallbackQuery.Data)
	if err != nil {
		slog.WarnContext(ctx, "malformed file callback", "data", update.CallbackQuery.Data)
		return
	}

	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	link, err := b.seedr.FetchFile(ctx, token, fileID)
	if err != nil {
		b.reply(ctx, chatID, "Could not generate a download link: "+err.Error(), nil)
		return
	}

	b.reply(ctx, chatID,
		fmt.Sprintf("📄 %s\n\nThe link is valid for a limited time.", link.Name),
		fileLinkKeyboard(link.URL, fileID, folderID))
}

// onDownloadFolder requests a ZIP archive of a whole folder.
func (b *Bot) onDownloadFolder(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok || update.CallbackQuery == nil {
		return
	}

	folderID, ok := strings.CutPrefix(update.CallbackQuery.Data, cbArchivePrefix)
	if !ok || folderID == "" {
		slog.WarnContext(ctx, "malformed archive callback", "data", update.CallbackQuery.Data)
		return
	}

	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	archive, err := b.seedr.CreateArchive(ctx, token, folderID)
	if err != nil {
		b.reply(ctx, chatID, "Could not create the archive: "+err.Error(), nil)
		return
	}

	b.reply(ctx, chatID,
		"📦 Archive requested. It may take a moment before the link works:\n"+archive.URL,
		nil)
}

// onDeleteFile deletes a file from the delete_file_ callback.
func (b *Bot) onDeleteFile(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok || update.CallbackQuery == nil {
		return
	}

	fileID, ok := strings.CutPrefix(update.CallbackQuery.Data, cbDeleteFilePrefix)
	if !ok || fileID == "" {
		slog.WarnContext(ctx, "malformed delete callback", "data", update.CallbackQuery.Data)
		return
	}

	b.deleteItem(ctx, userID, chatID, "file", fileID)
}

// onStorage reports storage and bandwidth usage. Also serves the
// check_storage callback.
func (b *Bot) onStorage(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.ack(ctx, update)
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}
	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	usage, err := b.seedr.MemoryBandwidth(ctx, token)
	if err != nil {
		b.reply(ctx, chatID, "Could not fetch storage info: "+err.Error(), nil)
		return
	}
	b.reply(ctx, chatID, usageText(usage), mainMenuKeyboard())
}

// onDownload handles "/download <file id>".
func (b *Bot) onDownload(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	fileID := commandArgument(update)
	if fileID == "" {
		b.reply(ctx, chatID, "Usage: /download <file id>\nFile ids are shown under /folders.", nil)
		return
	}

	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	link, err := b.seedr.FetchFile(ctx, token, fileID)
	if err != nil {
		b.reply(ctx, chatID, "Could not generate a download link: "+err.Error(), nil)
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("📄 %s\n%s", link.Name, link.URL), nil)
}

// onAddMagnet handles "/addmagnet <magnet link>".
func (b *Bot) onAddMagnet(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	magnet := commandArgument(update)
	if !strings.HasPrefix(magnet, "magnet:") {
		b.reply(ctx, chatID, "Usage: /addmagnet <magnet link>", nil)
		return
	}

	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	if err := b.seedr.AddTorrent(ctx, token, magnet); err != nil {
		b.reply(ctx, chatID, "Could not add the magnet link: "+err.Error(), nil)
		return
	}
	b.reply(ctx, chatID, "✅ Magnet link added. Check /folders once the transfer finishes.", nil)
}

// onDelete handles "/delete <file|folder> <id>".
func (b *Bot) onDelete(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	userID, chatID, ok := sender(update)
	if !ok {
		return
	}

	itemType, id, err := parseDeleteCommand(commandArgument(update))
	if err != nil {
		b.reply(ctx, chatID, "Usage: /delete file <id> or /delete folder <id>", nil)
		return
	}

	b.deleteItem(ctx, userID, chatID, itemType, id)
}

func (b *Bot) deleteItem(ctx context.Context, userID, chatID int64, itemType, id string) {
	token, ok := b.token(ctx, userID, chatID)
	if !ok {
		return
	}

	if itemType == "folder" {
		if err := b.seedr.DeleteFolder(ctx, token, id); err != nil {
			b.reply(ctx, chatID, "Could not delete the folder: "+err.Error(), nil)
			return
		}
		b.reply(ctx, chatID, "🗑 Folder deleted.", nil)
		return
	}

	if err := b.seedr.DeleteFile(ctx, token, id); err != nil {
		b.reply(ctx, chatID, "Could not delete the file: "+err.Error(), nil)
		return
	}
	b.reply(ctx, chatID, "🗑 File deleted.", nil)
}

// parseDeleteCommand splits a "/delete" argument into its item type and id.
// A bare id is accepted as a file delete so links shown by /folders keep
// working when pasted directly.
func parseDeleteCommand(arg string) (itemType, id string, err error) {
	fields := strings.Fields(arg)
	switch len(fields) {
	case 1:
		return "file", fields[0], nil
	case 2:
		itemType = strings.ToLower(fields[0])
		if itemType != "file" && itemType != "folder" {
			return "", "", fmt.Errorf("unknown item type %q", fields[0])
		}
		return itemType, fields[1], nil
	default:
		return "", "", fmt.Errorf("expected <type> <id>, got %q", arg)
	}
}

// commandArgument returns the text after the command word, trimmed. Empty
// when the command came without an argument.
func commandArgument(update *models.Update) string {
	if update.Message == nil {
		return ""
	}
	_, rest, ok := strings.Cut(update.Message.Text, " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}
