package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/usecase/dto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// ProviderGoogle is the provider name stored on OAuth accounts.
const ProviderGoogle = "google"

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleProvider runs the authorization code flow against Google.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns nil when the client is not configured.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil
	}

	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL returns the consent page url carrying state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
}

// Exchange trades code for a token and loads the user profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*dto.OAuthProfile, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google userinfo: %w", err)
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("google account email %q is not verified", info.Email)
	}

	return &dto.OAuthProfile{
		Provider: ProviderGoogle,
		Subject:  info.Sub,
		Name:     info.Name,
		Email:    info.Email,
		Image:    info.Picture,
	}, nil
}
