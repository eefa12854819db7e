package bot

import (
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/florianilch/seedrbot/internal/seedr"
)

func TestFileCallbackRoundTrip(t *testing.T) {
	data := fileCallback("12345", "678")
	if data != "file_12345_678" {
		t.Fatalf("fileCallback = %q, want %q", data, "file_12345_678")
	}

	fileID, folderID, err := parseFileCallback(data)
	if err != nil {
		t.Fatalf("parseFileCallback: %v", err)
	}
	if fileID != "12345" || folderID != "678" {
		t.Errorf("parsed (%q, %q), want (%q, %q)", fileID, folderID, "12345", "678")
	}
}

func TestParseFileCallbackMalformed(t *testing.T) {
	for _, data := range []string{
		"file_",
		"file_12345",
		"file__678",
		"folder_12345",
		"",
	} {
		if _, _, err := parseFileCallback(data); err == nil {
			t.Errorf("parseFileCallback(%q) succeeded, want error", data)
		}
	}
}

func TestFolderListKeyboard(t *testing.T) {
	folders := []seedr.Folder{
		{ID: 11, Name: "Movies"},
		{ID: 22, Name: "Books"},
	}

	kb := folderListKeyboard(folders)

	// Two folder rows plus refresh and main menu
	if got := len(kb.InlineKeyboard); got != 4 {
		t.Fatalf("rows = %d, want 4", got)
	}
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "folder_11" {
		t.Errorf("first folder callback = %q, want %q", got, "folder_11")
	}
	if got := kb.InlineKeyboard[2][0].CallbackData; got != cbRefreshFolders {
		t.Errorf("refresh callback = %q, want %q", got, cbRefreshFolders)
	}
}

func TestFolderContentsKeyboard(t *testing.T) {
	contents := &seedr.FolderContents{
		Name: "Movies",
		Files: []seedr.File{
			{FolderFileID: 100, Name: "a.mkv", Size: 1 << 30},
			{FileID: 200, Name: "b.mkv", Size: 1 << 20},
			{Name: "no-id.mkv"}, // carries no identifier, must be skipped
		},
	}

	kb := folderContentsKeyboard("55", contents)

	// Archive row, two file rows (third file skipped), refresh, back
	if got := len(kb.InlineKeyboard); got != 5 {
		t.Fatalf("rows = %d, want 5", got)
	}
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "download_folder_55" {
		t.Errorf("archive callback = %q, want %q", got, "download_folder_55")
	}
	if got := kb.InlineKeyboard[1][0].CallbackData; got != "file_100_55" {
		t.Errorf("first file callback = %q, want %q", got, "file_100_55")
	}
	if got := kb.InlineKeyboard[2][0].CallbackData; got != "file_200_55" {
		t.Errorf("second file callback = %q, want %q", got, "file_200_55")
	}
	if got := kb.InlineKeyboard[4][0].CallbackData; got != cbListFolders {
		t.Errorf("back callback = %q, want %q", got, cbListFolders)
	}
}

func TestFolderContentsKeyboardEmptyFolder(t *testing.T) {
	kb := folderContentsKeyboard("7", &seedr.FolderContents{Name: "Empty"})

	// No archive row for an empty folder, only refresh and back
	if got := len(kb.InlineKeyboard); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if got := kb.InlineKeyboard[0][0].CallbackData; got != "refresh_files_7" {
		t.Errorf("refresh callback = %q, want %q", got, "refresh_files_7")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1 << 30, "1.00 GB"},
		{5 << 30, "5.00 GB"},
		{1536 * 1 << 20, "1.50 GB"},
		{512 * 1 << 20, "512.00 MB"},
		{0, "0.00 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestUsageText(t *testing.T) {
	text := usageText(&seedr.Usage{
		SpaceMax:      10 << 30,
		SpaceUsed:     5 << 30,
		BandwidthUsed: 2 << 30,
	})

	for _, want := range []string{"5.00 GB", "10.00 GB", "50.0%", "2.00 GB"} {
		if !strings.Contains(text, want) {
			t.Errorf("usage text missing %q:\n%s", want, text)
		}
	}
}

func TestCommandArgument(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"/download 12345", "12345"},
		{"/download   12345  ", "12345"},
		{"/download", ""},
		{"/addmagnet magnet:?xt=urn:btih:abc", "magnet:?xt=urn:btih:abc"},
	}
	for _, tt := range tests {
		update := &models.Update{Message: &models.Message{Text: tt.text}}
		if got := commandArgument(update); got != tt.want {
			t.Errorf("commandArgument(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}

	if got := commandArgument(&models.Update{}); got != "" {
		t.Errorf("commandArgument without message = %q, want empty", got)
	}
}
