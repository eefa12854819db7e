package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/florianilch/seedrbot/internal/seedr"
)

// Callback data vocabulary. Prefixed entries carry identifiers after the
// prefix; the rest are matched exactly.
const (
	cbConnect        = "start_auth"
	cbCheckAuth      = "check_auth"
	cbCancelAuth     = "cancel_auth"
	cbUnlink         = "unlink_account"
	cbMainMenu       = "main_menu"
	cbListFolders    = "list_folders"
	cbRefreshFolders = "refresh_folders"
	cbCheckStorage   = "check_storage"

	cbFolderPrefix       = "folder_"
	cbRefreshFilesPrefix = "refresh_files_"
	cbFilePrefix         = "file_"
	cbArchivePrefix      = "download_folder_"
	cbDeleteFilePrefix   = "delete_file_"
)

// fileCallback encodes a file action payload. The file id goes first so it
// survives folder ids that are themselves empty.
func fileCallback(fileID, folderID string) string {
	return cbFilePrefix + fileID + "_" + folderID
}

// parseFileCallback splits a file action payload back into its ids.
func parseFileCallback(data string) (fileID, folderID string, err error) {
	rest, ok := strings.CutPrefix(data, cbFilePrefix)
	if !ok {
		return "", "", fmt.Errorf("not a file callback: %q", data)
	}
	fileID, folderID, ok = strings.Cut(rest, "_")
	if !ok || fileID == "" {
		return "", "", fmt.Errorf("malformed file callback: %q", data)
	}
	return fileID, folderID, nil
}

func connectKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🔗 Connect Seedr Account", CallbackData: cbConnect}},
		},
	}
}

// authKeyboard is shown while a linking session is pending.
func authKeyboard(verificationURL string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🌐 Open Seedr Devices Page", URL: verificationURL}},
			{{Text: "✅ I've Entered the Code", CallbackData: cbCheckAuth}},
			{{Text: "❌ Cancel", CallbackData: cbCancelAuth}},
		},
	}
}

func mainMenuKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "📁 My Folders", CallbackData: cbListFolders}},
			{{Text: "💾 Storage Info", CallbackData: cbCheckStorage}},
			{{Text: "🔌 Disconnect Account", CallbackData: cbUnlink}},
		},
	}
}

func folderListKeyboard(folders []seedr.Folder) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(folders)+2)
	for _, folder := range folders {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         "📁 " + folder.Name,
			CallbackData: cbFolderPrefix + strconv.FormatInt(folder.ID, 10),
		}})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: "🔄 Refresh", CallbackData: cbRefreshFolders}},
		[]models.InlineKeyboardButton{{Text: "⬅️ Main Menu", CallbackData: cbMainMenu}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func folderContentsKeyboard(folderID string, contents *seedr.FolderContents) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(contents.Files)+3)
	if len(contents.Files) > 0 {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         "📦 Download All as ZIP",
			CallbackData: cbArchivePrefix + folderID,
		}})
	}
	for _, file := range contents.Files {
		id := file.ID()
		if id == "" {
			continue
		}
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         fmt.Sprintf("📄 %s (%s)", file.Name, formatBytes(file.Size)),
			CallbackData: fileCallback(id, folderID),
		}})
	}
	rows = append(rows,
		[]models.InlineKeyboardButton{{Text: "🔄 Refresh", CallbackData: cbRefreshFilesPrefix + folderID}},
		[]models.InlineKeyboardButton{{Text: "⬅️ Back to Folders", CallbackData: cbListFolders}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// fileLinkKeyboard accompanies a resolved download link.
func fileLinkKeyboard(url, fileID, folderID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "⬇️ Download", URL: url}},
			{{Text: "🗑 Delete from Seedr", CallbackData: cbDeleteFilePrefix + fileID}},
			{{Text: "⬅️ Back", CallbackData: cbFolderPrefix + folderID}},
		},
	}
}

// formatBytes renders a byte count in binary gigabytes with two decimals,
// falling back to megabytes below one gigabyte.
func formatBytes(n int64) string {
	const gb = 1 << 30
	if n >= gb {
		return fmt.Sprintf("%.2f GB", float64(n)/float64(gb))
	}
	return fmt.Sprintf("%.2f MB", float64(n)/float64(1<<20))
}

// usageText renders the account storage summary.
func usageText(usage *seedr.Usage) string {
	var sb strings.Builder
	sb.WriteString("💾 Storage\n\n")
	fmt.Fprintf(&sb, "Used: %s of %s\n", formatBytes(usage.SpaceUsed), formatBytes(usage.SpaceMax))
	if usage.SpaceMax > 0 {
		fmt.Fprintf(&sb, "Usage: %.1f%%\n", float64(usage.SpaceUsed)/float64(usage.SpaceMax)*100)
	}
	if usage.BandwidthUsed > 0 {
		fmt.Fprintf(&sb, "Bandwidth used: %s\n", formatBytes(usage.BandwidthUsed))
	}
	return sb.String()
}
