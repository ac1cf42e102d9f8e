package gdrive

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tanq16/partdl/internal/utils"
	"golang.org/x/oauth2"
)

func TestExtractFileID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing", "1AbC_d-9", false},
		{"https://drive.google.com/open?id=XYZ123", "XYZ123", false},
		{"https://drive.google.com/drive/folders/FOLDER1", "FOLDER1", false},
		{"https://drive.google.com/uc?export=download&id=Q42", "Q42", false},
		{"https://drive.google.com/", "", true},
	}
	for _, tt := range tests {
		got, err := extractFileID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractFileID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractFileID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateJobAuth(t *testing.T) {
	creds := filepath.Join(t.TempDir(), "creds.json")
	os.WriteFile(creds, []byte("{}"), 0600)
	link := "https://drive.google.com/file/d/abc/view"

	tests := []struct {
		name     string
		metadata map[string]any
		wantErr  bool
	}{
		{"none", map[string]any{}, true},
		{"both", map[string]any{"apiKey": "k", "credentialsFile": creds}, true},
		{"missing creds", map[string]any{"credentialsFile": filepath.Join(t.TempDir(), "nope.json")}, true},
		{"api key", map[string]any{"apiKey": "k"}, false},
		{"creds", map[string]any{"credentialsFile": creds}, false},
	}
	r := &GDriveResolver{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &utils.PartdlJob{URL: link, Metadata: tt.metadata}
			if err := r.ValidateJob(job); (err != nil) != tt.wantErr {
				t.Errorf("ValidateJob() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func driveServer(t *testing.T, wantAuth string, meta fileMetadata) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/abc" {
			http.NotFound(w, r)
			return
		}
		if wantAuth != "" && r.Header.Get("Authorization") != wantAuth {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if wantAuth == "" && r.URL.Query().Get("key") != "secret-key" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(meta)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBuildJobWithAPIKey(t *testing.T) {
	srv := driveServer(t, "", fileMetadata{Name: "slides.pdf", Size: "2048", MimeType: "application/pdf"})
	r := &GDriveResolver{APIBase: srv.URL + "/files"}
	job := &utils.PartdlJob{
		URL:      "https://drive.google.com/file/d/abc/view",
		Metadata: map[string]any{"apiKey": "secret-key"},
	}
	if err := r.ValidateJob(job); err != nil {
		t.Fatalf("ValidateJob: %v", err)
	}
	if err := r.BuildJob(job); err != nil {
		t.Fatalf("BuildJob: %v", err)
	}
	if want := srv.URL + "/files/abc?alt=media&key=secret-key"; job.DownloadURL != want {
		t.Errorf("DownloadURL = %q, want %q", job.DownloadURL, want)
	}
	if job.OutputPath != "slides.pdf" || job.Title != "slides.pdf" {
		t.Errorf("OutputPath/Title = %q/%q", job.OutputPath, job.Title)
	}
	if _, ok := job.Headers["Authorization"]; ok {
		t.Error("API key job must not carry a bearer header")
	}
	if size, _ := job.Metadata["size"].(int64); size != 2048 {
		t.Errorf("size = %d", size)
	}
}

func TestBuildJobWithCachedToken(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "creds.json")
	os.WriteFile(creds, []byte(`{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`), 0600)
	tokenFile := filepath.Join(dir, "token.json")
	if err := saveToken(tokenFile, &oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	srv := driveServer(t, "Bearer tok", fileMetadata{Name: "data.csv", Size: "10"})
	r := &GDriveResolver{APIBase: srv.URL + "/files", TokenFile: tokenFile}
	job := &utils.PartdlJob{
		URL:        "https://drive.google.com/open?id=abc",
		OutputPath: "out/data.csv",
		Metadata:   map[string]any{"credentialsFile": creds},
	}
	if err := r.ValidateJob(job); err != nil {
		t.Fatalf("ValidateJob: %v", err)
	}
	if err := r.BuildJob(job); err != nil {
		t.Fatalf("BuildJob: %v", err)
	}
	if got := job.Headers["Authorization"]; got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
	if want := srv.URL + "/files/abc?alt=media"; job.DownloadURL != want {
		t.Errorf("DownloadURL = %q, want %q", job.DownloadURL, want)
	}
	if job.OutputPath != "out/data.csv" {
		t.Errorf("OutputPath = %q", job.OutputPath)
	}
}

func TestBuildJobRejectsFolders(t *testing.T) {
	srv := driveServer(t, "", fileMetadata{Name: "stuff", MimeType: folderMimeType})
	r := &GDriveResolver{APIBase: srv.URL + "/files"}
	job := &utils.PartdlJob{
		URL:      "https://drive.google.com/drive/folders/abc",
		Metadata: map[string]any{"apiKey": "secret-key"},
	}
	if err := r.ValidateJob(job); err != nil {
		t.Fatalf("ValidateJob: %v", err)
	}
	if err := r.BuildJob(job); err == nil {
		t.Error("BuildJob accepted a folder")
	}
}
