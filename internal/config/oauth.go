package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const oauthClientBaseName = "oauthClient"

// OAuthClientConfig is a client file downloaded from Google Cloud. Desktop clients are keyed
// "installed" and web clients "web".
type OAuthClientConfig struct {
	Installed *OAuthCredentials `json:"installed,omitempty" validate:"required_without=Web"`
	Web       *OAuthCredentials `json:"web,omitempty" validate:"required_without=Installed"`
}

// OAuthCredentials holds the fields shared by both client types
type OAuthCredentials struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url,omitempty" validate:"omitempty,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// Credentials returns whichever client type the file holds
func (c *OAuthClientConfig) Credentials() *OAuthCredentials {
	if c.Installed != nil {
		return c.Installed
	}
	return c.Web
}

// LoadOAuthClientWithEnv loads oauthClient.<env>.json, or oauthClient.json when env is empty
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	name := oauthClientBaseName + ".json"
	if env != "" {
		name = oauthClientBaseName + "." + env + ".json"
	}

	path, err := findFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}

	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath reads and validates an OAuth client file
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var oauthCfg OAuthClientConfig
	if err := json.Unmarshal(data, &oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file %s: %w", path, err)
	}

	if err := validate.Struct(&oauthCfg); err != nil {
		return nil, fmt.Errorf("oauth client validation failed for %s: %w", path, err)
	}

	return &oauthCfg, nil
}
