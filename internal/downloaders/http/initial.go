package partdlhttp

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/tanq16/partdl/internal/utils"
)

type HTTPResolver struct{}

func (r *HTTPResolver) ValidateJob(job *utils.PartdlJob) error {
	log := utils.GetLogger("http-resolver")
	parsedURL, err := url.Parse(job.URL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("URL has no host: %s", job.URL)
	}

	client := utils.NewHTTPClient(job.HTTPClientConfig)
	req, err := http.NewRequest(http.MethodHead, job.URL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	for k, v := range job.Headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		// The downloader retries transport failures, so an unreachable origin
		// is not fatal at planning time.
		log.Debug().Err(err).Str("url", job.URL).Msg("HEAD request failed")
		return nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("URL not found (404)")
	case resp.StatusCode == http.StatusMethodNotAllowed:
		log.Debug().Str("url", job.URL).Msg("server does not allow HEAD")
	case resp.StatusCode >= 400:
		return fmt.Errorf("server returned error: %d", resp.StatusCode)
	default:
		if name := utils.FilenameFromDisposition(resp.Header.Get("Content-Disposition")); name != "" {
			job.Metadata["filename"] = name
		}
		if resp.Request != nil && resp.Request.URL.String() != job.URL {
			job.Metadata["finalURL"] = resp.Request.URL.String()
		}
	}
	return nil
}

func (r *HTTPResolver) BuildJob(job *utils.PartdlJob) error {
	job.DownloadURL = job.URL
	if job.OutputPath == "" {
		job.OutputPath = defaultOutputPath(job)
	}
	if job.Title == "" {
		job.Title = filepath.Base(job.OutputPath)
	}
	log := utils.GetLogger("http-resolver")
	log.Debug().Str("url", job.URL).Str("output", job.OutputPath).Msg("job built")
	return nil
}

// defaultOutputPath prefers the server's Content-Disposition name, then the
// last segment of the redirected or original URL.
func defaultOutputPath(job *utils.PartdlJob) string {
	if name, ok := job.Metadata["filename"].(string); ok && name != "" {
		return name
	}
	if finalURL, ok := job.Metadata["finalURL"].(string); ok {
		if name := utils.FilenameFromURL(finalURL); name != "" {
			return name
		}
	}
	if name := utils.FilenameFromURL(job.URL); name != "" {
		return name
	}
	return "download"
}
