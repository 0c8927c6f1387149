package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/maeulhub/maeulhub-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/kakao"
)

// Provider identifies an OAuth provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderKakao  Provider = "kakao"
)

var ErrUnknownProvider = fmt.Errorf("unknown oauth provider")

// OAuthProfile is the canonical profile shape every provider response is
// normalized into before it reaches the auth flow.
type OAuthProfile struct {
	Provider Provider
	ID       string // provider-side opaque user id
	Email    string
	Picture  *string // nil when the provider reports no real photo
}

// OAuthService exchanges authorization codes for provider tokens and fetches
// profile info. Every outbound call runs under the configured timeout so a
// hanging provider cannot stall a request indefinitely.
type OAuthService struct {
	googleConfig *oauth2.Config
	kakaoConfig  *oauth2.Config
	timeout      time.Duration

	// overridable in tests
	googleUserInfoURL string
	kakaoUserInfoURL  string
}

func NewOAuthService(cfg *config.Config) *OAuthService {
	return &OAuthService{
		googleConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		kakaoConfig: &oauth2.Config{
			ClientID:     cfg.KakaoRESTAPIKey,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.KakaoRedirectURL,
			Endpoint:     kakao.Endpoint,
		},
		timeout:           cfg.OAuthTimeout,
		googleUserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		kakaoUserInfoURL:  "https://kapi.kakao.com/v2/user/me",
	}
}

// AuthCodeURL returns the provider consent-screen URL to redirect the client to.
func (s *OAuthService) AuthCodeURL(provider Provider) (string, error) {
	switch provider {
	case ProviderGoogle:
		return s.googleConfig.AuthCodeURL("state", oauth2.AccessTypeOffline), nil
	case ProviderKakao:
		return s.kakaoConfig.AuthCodeURL("state"), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// Exchange trades the authorization code for a provider access token, fetches
// the provider profile and normalizes it into the canonical shape.
func (s *OAuthService) Exchange(ctx context.Context, provider Provider, code string) (*OAuthProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch provider {
	case ProviderGoogle:
		return s.exchangeGoogle(ctx, code)
	case ProviderKakao:
		return s.exchangeKakao(ctx, code)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// googleUserInfo is Google's flat profile response.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (s *OAuthService) exchangeGoogle(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange failed: %w", err)
	}

	var info googleUserInfo
	err = s.fetchUserInfo(ctx, s.googleConfig.Client(ctx, token), s.googleUserInfoURL, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to get google user info: %w", err)
	}

	return mapGoogleProfile(info), nil
}

func mapGoogleProfile(info googleUserInfo) *OAuthProfile {
	profile := &OAuthProfile{
		Provider: ProviderGoogle,
		ID:       info.ID,
		Email:    info.Email,
	}
	if info.Picture != "" {
		picture := info.Picture
		profile.Picture = &picture
	}
	return profile
}

// kakaoUserInfo is Kakao's nested profile response.
type kakaoUserInfo struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			ProfileImageURL string `json:"profile_image_url"`
			IsDefaultImage  bool   `json:"is_default_image"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func (s *OAuthService) exchangeKakao(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := s.kakaoConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("kakao token exchange failed: %w", err)
	}

	var info kakaoUserInfo
	err = s.fetchUserInfo(ctx, s.kakaoConfig.Client(ctx, token), s.kakaoUserInfoURL, &info)
	if err != nil {
		return nil, fmt.Errorf("failed to get kakao user info: %w", err)
	}

	return mapKakaoProfile(info), nil
}

func mapKakaoProfile(info kakaoUserInfo) *OAuthProfile {
	profile := &OAuthProfile{
		Provider: ProviderKakao,
		ID:       strconv.FormatInt(info.ID, 10),
		Email:    info.KakaoAccount.Email,
	}
	// Kakao's placeholder avatar is not a user photo
	if !info.KakaoAccount.Profile.IsDefaultImage && info.KakaoAccount.Profile.ProfileImageURL != "" {
		picture := info.KakaoAccount.Profile.ProfileImageURL
		profile.Picture = &picture
	}
	return profile
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("user info request returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
