package gdrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tanq16/partdl/internal/output"
	"github.com/tanq16/partdl/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const driveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// driveAuth is either an API key sent as a query parameter or an OAuth
// access token sent as a bearer header.
type driveAuth struct {
	apiKey      string
	accessToken string
}

func (a driveAuth) headers() map[string]string {
	if a.accessToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + a.accessToken}
}

func getAccessTokenFromCredentials(credentialsFile, tokenFile string) (string, error) {
	log := utils.GetLogger("gdrive-auth")
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return "", fmt.Errorf("unable to read credentials file: %w", err)
	}
	log.Debug().Msgf("using credentials from %s", credentialsFile)
	config, err := google.ConfigFromJSON(b, driveReadonlyScope)
	if err != nil {
		log.Error().Err(err).Msg("unable to parse client secret file")
		return "", fmt.Errorf("unable to parse client secret file: %w", err)
	}

	token, err := getOAuthToken(config, tokenFile)
	if err != nil {
		return "", fmt.Errorf("unable to get OAuth token: %w", err)
	}
	if !token.Valid() {
		if token.RefreshToken == "" {
			return "", errors.New("OAuth token is expired and cannot be refreshed")
		}
		newToken, err := config.TokenSource(context.Background(), token).Token()
		if err != nil {
			return "", fmt.Errorf("unable to refresh token: %w", err)
		}
		token = newToken
		if err := saveToken(tokenFile, token); err != nil {
			log.Warn().Err(err).Msg("unable to save refreshed token")
		}
	}
	return token.AccessToken, nil
}

// getOAuthToken loads the cached token or runs the interactive code exchange.
// Jobs are resolved before any progress rows are drawn, so the prompt owns
// the terminal here.
func getOAuthToken(config *oauth2.Config, tokenFile string) (*oauth2.Token, error) {
	log := utils.GetLogger("gdrive-auth")
	token, err := tokenFromFile(tokenFile)
	if err == nil {
		log.Debug().Msg("existing token retrieved")
		return token, nil
	}
	log.Debug().Msg("no existing token, starting OAuth flow")
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	output.PrintHeader("Google Drive authorization")
	output.PrintDetail("\nVisit this URL to get the authorization code:\n")
	fmt.Printf("%s\n", authURL)
	output.PrintDetail("\nAfter authorizing, enter the authorization code:")
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	token, err = config.Exchange(context.Background(), authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange auth code for token: %w", err)
	}
	if err := saveToken(tokenFile, token); err != nil {
		log.Warn().Err(err).Msg("unable to save new token")
	}
	return token, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	dir := filepath.Dir(file)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}
	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to encode token: %w", err)
	}
	return nil
}
