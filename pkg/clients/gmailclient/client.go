package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/call-rota/internal/config"
	"github.com/jakechorley/call-rota/pkg/utils"
)

// Client wraps the Gmail API client
type Client struct {
	service         *gmail.Service
	lastRequestTime time.Time
	requestMutex    sync.Mutex
}

// NewClient creates a new Gmail client using an existing OAuth token.
// The token must already carry the gmail.readonly scope.
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{service: service}, nil
}
