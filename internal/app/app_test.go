package app

import (
	"testing"

	"github.com/fitshare/auth-service/internal/config"
	"github.com/fitshare/auth-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProviderRegistry(t *testing.T) {
	cfg := &config.Config{}
	cfg.OAuth.HTTPTimeout = config.Duration{Duration: 1}
	cfg.Kakao = config.KakaoConfig{ClientID: "kakao-id", TokenURL: "http://kakao/token", ProfileURL: "http://kakao/me"}
	cfg.Naver = config.NaverConfig{TokenURL: "http://naver/token", ProfileURL: "http://naver/me"}

	registry, err := newProviderRegistry(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	kakao, err := registry.Get(domain.ProviderKakao)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderKakao, kakao.Name())

	_, err = registry.Get(domain.ProviderNaver)
	assert.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestNewProviderRegistry_NaverWithoutSecret(t *testing.T) {
	cfg := &config.Config{}
	cfg.OAuth.HTTPTimeout = config.Duration{Duration: 1}
	cfg.Naver = config.NaverConfig{ClientID: "naver-id", TokenURL: "http://naver/token", ProfileURL: "http://naver/me"}

	_, err := newProviderRegistry(cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "client secret is required")
}
