package utils

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
	"gopkg.in/yaml.v3"
)

var filenameRegex = regexp.MustCompile(`[^a-zA-Z0-9_\-\. ]+`)

// ParseHeaderArgs turns "Name: value" flags into a header map. Entries
// without a colon are ignored; names or values that could not be sent on the
// wire are rejected.
func ParseHeaderArgs(headers []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if !httpguts.ValidHeaderFieldName(key) {
			return nil, fmt.Errorf("invalid header name %q", key)
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, fmt.Errorf("invalid value for header %s", key)
		}
		result[key] = value
	}
	return result, nil
}

// FilenameFromDisposition extracts a safe file name from a Content-Disposition
// header value, or returns "" when none is present.
func FilenameFromDisposition(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil {
		return ""
	}
	if fn, ok := params["filename"]; ok && fn != "" {
		return safeFilename(fn)
	}
	if fn, ok := params["filename*"]; ok && strings.HasPrefix(fn, "UTF-8''") {
		unescaped, _ := url.PathUnescape(strings.TrimPrefix(fn, "UTF-8''"))
		return safeFilename(unescaped)
	}
	return ""
}

// safeFilename replaces characters outside the allowed set and rejects names
// that would resolve to the current or parent directory.
func safeFilename(name string) string {
	name = filenameRegex.ReplaceAllString(name, "_")
	if strings.Trim(name, ". ") == "" {
		return ""
	}
	return name
}

// FilenameFromURL returns the last non-empty path segment of rawURL.
func FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "/" || strings.Trim(base, ".") == "" {
		return ""
	}
	return base
}

func NormalizeJobType(jobType string) string {
	typeMap := map[string]string{
		"http":         "http",
		"https":        "http",
		"s3":           "s3",
		"gdrive":       "gdrive",
		"googledrive":  "gdrive",
		"google-drive": "gdrive",
	}
	return typeMap[strings.ToLower(jobType)]
}

func DetermineDownloadType(link string) string {
	if strings.HasPrefix(link, "https://drive.google.com") {
		return "gdrive"
	} else if strings.HasPrefix(link, "s3://") {
		return "s3"
	}
	return "http"
}

// ReadBatchFile loads a YAML batch file and turns it into jobs. Unknown
// sections and empty links are reported through warn and skipped.
func ReadBatchFile(filePath string, clientConfig HTTPClientConfig, warn func(string)) ([]PartdlJob, error) {
	log := GetLogger("config")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading YAML file: %w", err)
	}
	var batchFile BatchFile
	if err := yaml.Unmarshal(data, &batchFile); err != nil {
		return nil, fmt.Errorf("error parsing YAML file: %w", err)
	}
	var jobs []PartdlJob
	jobTypes := make([]string, 0, len(batchFile))
	for jobType := range batchFile {
		jobTypes = append(jobTypes, jobType)
	}
	slices.Sort(jobTypes)
	for _, jobType := range jobTypes {
		entries := batchFile[jobType]
		normalizedType := NormalizeJobType(jobType)
		if normalizedType == "" {
			warn(fmt.Sprintf("Unknown job type '%s', skipping...", jobType))
			continue
		}
		for _, entry := range entries {
			if entry.Link == "" {
				warn(fmt.Sprintf("Empty link found in %s section, skipping...", jobType))
				continue
			}
			jobs = append(jobs, PartdlJob{
				JobType:          normalizedType,
				URL:              entry.Link,
				OutputPath:       entry.OutputPath,
				Title:            entry.Title,
				HTTPClientConfig: clientConfig,
				Metadata:         make(map[string]any),
			})
		}
	}
	log.Debug().Int("count", len(jobs)).Msg("Entries loaded from YAML")
	return jobs, nil
}
