package gdrive

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"

	"github.com/tanq16/partdl/internal/utils"
)

var (
	driveFileRegex      = regexp.MustCompile(`https://drive\.google\.com/file/d/([^/?#]+)`)
	driveShortLinkRegex = regexp.MustCompile(`https://drive\.google\.com/open\?id=([^&\s]+)`)
	driveFolderRegex    = regexp.MustCompile(`https://drive\.google\.com/drive/folders/([^/?#]+)`)
)

const (
	driveAPIURL    = "https://www.googleapis.com/drive/v3/files"
	folderMimeType = "application/vnd.google-apps.folder"
)

type fileMetadata struct {
	Name     string `json:"name"`
	Size     string `json:"size"`
	MimeType string `json:"mimeType"`
}

func extractFileID(rawURL string) (string, error) {
	if matches := driveFileRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}
	if matches := driveShortLinkRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}
	if matches := driveFolderRegex.FindStringSubmatch(rawURL); len(matches) > 1 {
		return matches[1], nil
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if idParam := parsedURL.Query().Get("id"); idParam != "" {
		return idParam, nil
	}
	return "", fmt.Errorf("unable to extract file ID from URL: %s", rawURL)
}

// fileURL builds a files endpoint URL for fileID, adding the API key when
// the job authenticates with one.
func fileURL(apiBase, fileID string, query url.Values, apiKey string) string {
	if apiKey != "" {
		query.Set("key", apiKey)
	}
	return fmt.Sprintf("%s/%s?%s", apiBase, url.PathEscape(fileID), query.Encode())
}

func getFileMetadata(client *utils.PartdlHTTPClient, apiBase, fileID string, auth driveAuth) (*fileMetadata, error) {
	metadataURL := fileURL(apiBase, fileID, url.Values{"fields": {"name,size,mimeType"}}, auth.apiKey)
	req, err := http.NewRequest(http.MethodGet, metadataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range auth.headers() {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching file metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get file metadata, status: %d", resp.StatusCode)
	}
	var metadata fileMetadata
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("error parsing metadata response: %w", err)
	}
	return &metadata, nil
}

func parseSize(size string) (int64, error) {
	return strconv.ParseInt(size, 10, 64)
}
