package provider

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fitshare/auth-service/internal/domain"
)

const (
	KakaoTokenURL   = "https://kauth.kakao.com/oauth/token"
	KakaoProfileURL = "https://kapi.kakao.com/v2/user/me"
)

// Kakao returns the Kakao variant: public client, fixed redirect URI, no state.
func Kakao(clientID, redirectURL string) Config {
	return Config{
		Name:          domain.ProviderKakao,
		ClientID:      clientID,
		RedirectURL:   redirectURL,
		TokenURL:      KakaoTokenURL,
		ProfileURL:    KakaoProfileURL,
		ProfileMethod: http.MethodPost,
		Decode:        decodeKakaoProfile,
	}
}

type kakaoProfile struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

func decodeKakaoProfile(body []byte) (*domain.UserProfile, error) {
	var p kakaoProfile
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse kakao profile: %w", err)
	}
	if p.ID == 0 {
		return nil, errors.New("kakao profile is missing id")
	}

	return &domain.UserProfile{
		ProviderUserID: strconv.FormatInt(p.ID, 10),
		Name:           firstNonEmpty(p.KakaoAccount.Profile.Nickname, p.Properties.Nickname, p.Name),
		ProfileURI:     firstNonEmpty(p.KakaoAccount.Profile.ProfileImageURL, p.Properties.ProfileImage),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
