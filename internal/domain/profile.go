package domain

// ProviderName identifies an external identity provider.
type ProviderName string

const (
	ProviderKakao ProviderName = "kakao"
	ProviderNaver ProviderName = "naver"
)

// UserProfile is the identity document returned by a provider's profile endpoint.
type UserProfile struct {
	Provider       ProviderName
	ProviderUserID string
	Name           string
	ProfileURI     string
}
