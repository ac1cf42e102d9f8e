package gdrive

import (
	"fmt"
	"net/url"
	"os"

	"github.com/tanq16/partdl/internal/utils"
)

type GDriveResolver struct {
	// APIBase overrides the Drive files endpoint.
	APIBase string
	// TokenFile caches OAuth tokens. Default: utils.TokenFile
	TokenFile string
}

func (r *GDriveResolver) apiBase() string {
	if r.APIBase != "" {
		return r.APIBase
	}
	return driveAPIURL
}

func (r *GDriveResolver) ValidateJob(job *utils.PartdlJob) error {
	fileID, err := extractFileID(job.URL)
	if err != nil {
		return err
	}
	job.Metadata["fileID"] = fileID

	apiKey, _ := job.Metadata["apiKey"].(string)
	credentialsFile, _ := job.Metadata["credentialsFile"].(string)
	if apiKey == "" && credentialsFile == "" {
		return fmt.Errorf("either --api-key or --creds must be provided")
	}
	if apiKey != "" && credentialsFile != "" {
		return fmt.Errorf("only one of --api-key or --creds can be provided")
	}
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return fmt.Errorf("credentials file not found: %w", err)
		}
	}
	return nil
}

func (r *GDriveResolver) BuildJob(job *utils.PartdlJob) error {
	log := utils.GetLogger("gdrive-resolver")
	fileID := job.Metadata["fileID"].(string)

	var auth driveAuth
	if apiKey, _ := job.Metadata["apiKey"].(string); apiKey != "" {
		auth.apiKey = apiKey
	} else {
		tokenFile := r.TokenFile
		if tokenFile == "" {
			tokenFile = utils.TokenFile
		}
		token, err := getAccessTokenFromCredentials(job.Metadata["credentialsFile"].(string), tokenFile)
		if err != nil {
			return fmt.Errorf("error getting OAuth token: %w", err)
		}
		auth.accessToken = token
	}

	client := utils.NewHTTPClient(job.HTTPClientConfig)
	metadata, err := getFileMetadata(client, r.apiBase(), fileID, auth)
	if err != nil {
		return fmt.Errorf("error getting metadata: %w", err)
	}
	if metadata.MimeType == folderMimeType {
		return fmt.Errorf("%s is a folder; only single files can be downloaded", fileID)
	}
	if size, err := parseSize(metadata.Size); err == nil {
		job.Metadata["size"] = size
	}
	log.Debug().Str("fileID", fileID).Str("name", metadata.Name).Str("size", metadata.Size).Msg("metadata retrieved")

	job.DownloadURL = fileURL(r.apiBase(), fileID, url.Values{"alt": {"media"}}, auth.apiKey)
	if job.Headers == nil {
		job.Headers = make(map[string]string)
	}
	for k, v := range auth.headers() {
		job.Headers[k] = v
	}
	if job.OutputPath == "" {
		job.OutputPath = metadata.Name
		if job.OutputPath == "" {
			job.OutputPath = fileID
		}
	}
	if job.Title == "" {
		job.Title = metadata.Name
		if job.Title == "" {
			job.Title = fileID
		}
	}
	return nil
}
