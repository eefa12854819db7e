package seedr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Folder is a directory in the user's Seedr space.
type Folder struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// File is a file entry as returned by the listing endpoints. The API is
// inconsistent about which identifier field it populates, so consumers must
// go through ID() rather than reading the fields directly.
type File struct {
	FolderFileID int64  `json:"folder_file_id"`
	FileID       int64  `json:"file_id"`
	LegacyID     int64  `json:"id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
}

// ID normalizes the API's inconsistent file identifier fields into the one
// usable for fetch and delete calls. Priority order: folder_file_id, then
// file_id, then id. Returns "" when the entry carries no identifier at all.
func (f File) ID() string {
	for _, id := range []int64{f.FolderFileID, f.FileID, f.LegacyID} {
		if id != 0 {
			return strconv.FormatInt(id, 10)
		}
	}
	return ""
}

// FolderContents is a folder listing including usage counters.
type FolderContents struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Folders   []Folder `json:"folders"`
	Files     []File   `json:"files"`
	SpaceMax  int64    `json:"space_max"`
	SpaceUsed int64    `json:"space_used"`
}

// FileLink is a generated download link, valid for a limited time.
type FileLink struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Archive is a generated ZIP archive link for a whole folder.
type Archive struct {
	URL string `json:"archive_url"`
}

// Usage is the account's storage and bandwidth counters, in bytes.
type Usage struct {
	SpaceMax      int64 `json:"space_max"`
	SpaceUsed     int64 `json:"space_used"`
	BandwidthUsed int64 `json:"bandwidth_used"`
}

// opResult is the generic acknowledgement shape for mutating calls.
type opResult struct {
	Result bool `json:"result"`
}

// TestToken verifies that a stored access token is still accepted.
func (c *Client) TestToken(ctx context.Context, token string) error {
	var res opResult
	if err := c.resource(ctx, token, "test_token", nil, &res); err != nil {
		return err
	}
	if !res.Result {
		return fmt.Errorf("token rejected")
	}
	return nil
}

// ListContents lists a folder. An empty folderID lists the root folder.
func (c *Client) ListContents(ctx context.Context, token, folderID string) (*FolderContents, error) {
	params := url.Values{}
	if folderID != "" && folderID != "0" {
		params.Set("folder_id", folderID)
	}

	var contents FolderContents
	if err := c.resource(ctx, token, "list_contents", params, &contents); err != nil {
		return nil, err
	}
	return &contents, nil
}

// FetchFile generates a download link for a file.
func (c *Client) FetchFile(ctx context.Context, token, fileID string) (*FileLink, error) {
	params := url.Values{"folder_file_id": {fileID}}

	var link FileLink
	if err := c.resource(ctx, token, "fetch_file", params, &link); err != nil {
		return nil, err
	}
	if link.URL == "" {
		return nil, fmt.Errorf("no download link for file %s", fileID)
	}
	return &link, nil
}

// AddTorrent adds a torrent to the account by magnet link.
func (c *Client) AddTorrent(ctx context.Context, token, magnet string) error {
	params := url.Values{"torrent_magnet": {magnet}}

	var res opResult
	if err := c.resource(ctx, token, "add_torrent", params, &res); err != nil {
		return err
	}
	if !res.Result {
		return fmt.Errorf("torrent rejected")
	}
	return nil
}

// DeleteFile deletes a single file.
func (c *Client) DeleteFile(ctx context.Context, token, fileID string) error {
	return c.deleteItems(ctx, token, "file", fileID)
}

// DeleteFolder deletes a folder and its contents.
func (c *Client) DeleteFolder(ctx context.Context, token, folderID string) error {
	return c.deleteItems(ctx, token, "folder", folderID)
}

func (c *Client) deleteItems(ctx context.Context, token, itemType, id string) error {
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s id %q", itemType, id)
	}

	arr, err := json.Marshal([]map[string]any{{"type": itemType, "id": numeric}})
	if err != nil {
		return fmt.Errorf("encoding delete request: %w", err)
	}
	params := url.Values{"delete_arr": {string(arr)}}

	var res opResult
	if err := c.resource(ctx, token, "delete", params, &res); err != nil {
		return err
	}
	if !res.Result {
		return fmt.Errorf("delete rejected for %s %s", itemType, id)
	}
	return nil
}

// CreateArchive requests a ZIP archive of a folder. Archive generation is
// asynchronous server-side; the returned link may take time to become
// downloadable.
func (c *Client) CreateArchive(ctx context.Context, token, folderID string) (*Archive, error) {
	numeric, err := strconv.ParseInt(folderID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid folder id %q", folderID)
	}

	arr, err := json.Marshal([]map[string]any{{"type": "folder", "id": numeric}})
	if err != nil {
		return nil, fmt.Errorf("encoding archive request: %w", err)
	}
	params := url.Values{"archive_arr": {string(arr)}}

	var archive Archive
	if err := c.resource(ctx, token, "create_empty_archive", params, &archive); err != nil {
		return nil, err
	}
	if archive.URL == "" {
		return nil, fmt.Errorf("no archive link for folder %s", folderID)
	}
	return &archive, nil
}

// MemoryBandwidth returns the account's storage and bandwidth usage.
func (c *Client) MemoryBandwidth(ctx context.Context, token string) (*Usage, error) {
	var usage Usage
	if err := c.resource(ctx, token, "get_memory_bandwidth", nil, &usage); err != nil {
		return nil, err
	}
	return &usage, nil
}

// resource performs one authenticated resource call.
func (c *Client) resource(ctx context.Context, token, fn string, params url.Values, out any) error {
	form := url.Values{
		"access_token": {token},
		"func":         {fn},
	}
	for key, values := range params {
		form[key] = values
	}

	return c.postForm(ctx, resourcePath, form, out)
}
