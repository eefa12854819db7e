package seedr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestDeviceCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != deviceCodePath {
			t.Errorf("path = %s, want %s", r.URL.Path, deviceCodePath)
		}
		if got := r.URL.Query().Get("client_id"); got != ClientID {
			t.Errorf("client_id = %s, want %s", got, ClientID)
		}
		_, _ = w.Write([]byte(`{"device_code":"D1","user_code":"ABCD1","expires_in":300,"interval":5}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	code, err := client.RequestDeviceCode(context.Background())
	if err != nil {
		t.Fatalf("RequestDeviceCode failed: %v", err)
	}

	if code.DeviceCode != "D1" || code.UserCode != "ABCD1" {
		t.Errorf("got %+v, want device_code D1, user_code ABCD1", code)
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantToken   string
		wantPending bool
		wantErrText string
	}{
		{
			name:      "approved",
			status:    http.StatusOK,
			body:      `{"access_token":"T","token_type":"bearer"}`,
			wantToken: "T",
		},
		{
			name:        "pending",
			status:      http.StatusBadRequest,
			body:        `{"error":"authorization_pending"}`,
			wantPending: true,
		},
		{
			name:        "denied verbatim",
			status:      http.StatusBadRequest,
			body:        `{"error":"access_denied","error_description":"user rejected the request"}`,
			wantErrText: "access_denied: user rejected the request",
		},
		{
			name:        "invalid code",
			status:      http.StatusBadRequest,
			body:        `{"error":"invalid_request"}`,
			wantErrText: "invalid_request",
		},
		{
			name:        "garbage response",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantErrText: "seedr returned status 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("device_code"); got != "D1" {
					t.Errorf("device_code = %s, want D1", got)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			token, err := client.Authorize(context.Background(), "D1")

			switch {
			case tt.wantPending:
				if !errors.Is(err, ErrAuthorizationPending) {
					t.Errorf("err = %v, want ErrAuthorizationPending", err)
				}
			case tt.wantErrText != "":
				if err == nil || err.Error() != tt.wantErrText {
					t.Errorf("err = %v, want %q", err, tt.wantErrText)
				}
			default:
				if err != nil {
					t.Fatalf("Authorize failed: %v", err)
				}
				if token.AccessToken != tt.wantToken {
					t.Errorf("access token = %q, want %q", token.AccessToken, tt.wantToken)
				}
			}
		})
	}
}

func TestFileIDNormalization(t *testing.T) {
	tests := []struct {
		name string
		file File
		want string
	}{
		{name: "folder_file_id wins", file: File{FolderFileID: 1, FileID: 2, LegacyID: 3}, want: "1"},
		{name: "file_id next", file: File{FileID: 2, LegacyID: 3}, want: "2"},
		{name: "id last", file: File{LegacyID: 3}, want: "3"},
		{name: "no identifier", file: File{Name: "orphan"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.file.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListContents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parsing form: %v", err)
		}
		if got := r.PostForm.Get("access_token"); got != "T" {
			t.Errorf("access_token = %q, want T", got)
		}
		if got := r.PostForm.Get("func"); got != "list_contents" {
			t.Errorf("func = %q, want list_contents", got)
		}
		if got := r.PostForm.Get("folder_id"); got != "55" {
			t.Errorf("folder_id = %q, want 55", got)
		}
		_, _ = w.Write([]byte(`{
			"id": 55, "name": "Downloads",
			"folders": [{"id": 60, "name": "sub"}],
			"files": [{"folder_file_id": 70, "name": "movie.mkv", "size": 1048576}]
		}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	contents, err := client.ListContents(context.Background(), "T", "55")
	if err != nil {
		t.Fatalf("ListContents failed: %v", err)
	}

	if contents.Name != "Downloads" || len(contents.Folders) != 1 || len(contents.Files) != 1 {
		t.Errorf("unexpected contents: %+v", contents)
	}
	if got := contents.Files[0].ID(); got != "70" {
		t.Errorf("file ID = %q, want 70", got)
	}
}

func TestResourceErrorSurfacedVerbatim(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"space_limit_reached","error_description":"not enough space"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	err := client.AddTorrent(context.Background(), "T", "magnet:?xt=urn:btih:abc")
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.Kind != "space_limit_reached" {
		t.Errorf("kind = %q, want space_limit_reached", apiErr.Kind)
	}
}

func TestDeleteFileBuildsDeleteArr(t *testing.T) {
	var deleteArr string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		deleteArr = r.PostForm.Get("delete_arr")
		_, _ = w.Write([]byte(`{"result":true}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	if err := client.DeleteFile(context.Background(), "T", "123"); err != nil {
		t.Fatalf("DeleteFile failed: %v", err)
	}

	want := `[{"id":123,"type":"file"}]`
	if deleteArr != want {
		t.Errorf("delete_arr = %s, want %s", deleteArr, want)
	}

	if err := client.DeleteFile(context.Background(), "T", "not-a-number"); err == nil {
		t.Error("expected error for non-numeric id, got none")
	}
}

func TestMemoryBandwidth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"space_max":10737418240,"space_used":5368709120,"bandwidth_used":1073741824}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	usage, err := client.MemoryBandwidth(context.Background(), "T")
	if err != nil {
		t.Fatalf("MemoryBandwidth failed: %v", err)
	}
	if usage.SpaceMax != 10737418240 || usage.SpaceUsed != 5368709120 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}
