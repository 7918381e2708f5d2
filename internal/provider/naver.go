package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fitshare/auth-service/internal/domain"
)

const (
	NaverTokenURL   = "https://nid.naver.com/oauth2.0/token"
	NaverProfileURL = "https://openapi.naver.com/v1/nid/me"

	naverResultOK = "00"
)

// Naver returns the Naver variant: confidential client that also requires
// the anti-forgery state echoed back on the token request.
func Naver(clientID, clientSecret string) Config {
	return Config{
		Name:          domain.ProviderNaver,
		ClientID:      clientID,
		ClientSecret:  clientSecret,
		TokenURL:      NaverTokenURL,
		ProfileURL:    NaverProfileURL,
		ProfileMethod: http.MethodGet,
		RequireSecret: true,
		RequireState:  true,
		Decode:        decodeNaverProfile,
	}
}

type naverProfile struct {
	ResultCode string `json:"resultcode"`
	Message    string `json:"message"`
	Response   struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

func decodeNaverProfile(body []byte) (*domain.UserProfile, error) {
	var p naverProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse naver profile: %w", err)
	}
	if p.ResultCode != naverResultOK {
		return nil, fmt.Errorf("naver profile result %q: %s", p.ResultCode, p.Message)
	}

	return &domain.UserProfile{
		ProviderUserID: p.Response.ID,
		Name:           firstNonEmpty(p.Response.Name, p.Response.Nickname),
		ProfileURI:     p.Response.ProfileImage,
	}, nil
}
