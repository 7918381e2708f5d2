package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokenEndpoint struct {
	status int
	body   string
	form   url.Values
}

func (e *tokenEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		e.form = r.PostForm
	}
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(e.status)
	_, _ = w.Write([]byte(e.body))
}

func newKakaoClient(t *testing.T, tokenURL, profileURL string) *OAuthClient {
	t.Helper()
	cfg := Kakao("X", "https://example.com/callback")
	cfg.TokenURL = tokenURL
	cfg.ProfileURL = profileURL
	c, err := New(cfg, nil, 2*time.Second)
	require.NoError(t, err)
	return c
}

func newNaverClient(t *testing.T, tokenURL, profileURL string) *OAuthClient {
	t.Helper()
	cfg := Naver("naver-id", "naver-secret")
	cfg.TokenURL = tokenURL
	cfg.ProfileURL = profileURL
	c, err := New(cfg, nil, 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNew_ValidatesVariant(t *testing.T) {
	_, err := New(Kakao("", "https://example.com/callback"), nil, time.Second)
	require.Error(t, err)

	_, err = New(Naver("naver-id", ""), nil, time.Second)
	require.Error(t, err)

	c, err := New(Naver("naver-id", "secret"), nil, time.Second)
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderNaver, c.Name())
}

func TestExchangeCode_Kakao(t *testing.T) {
	endpoint := &tokenEndpoint{status: http.StatusOK, body: `{"access_token":"ptok1","token_type":"bearer"}`}
	srv := httptest.NewServer(endpoint)
	defer srv.Close()

	c := newKakaoClient(t, srv.URL, srv.URL)

	tok, err := c.ExchangeCode(context.Background(), "abc123", ExchangeParams{})
	require.NoError(t, err)
	assert.Equal(t, "ptok1", tok)

	assert.Equal(t, "authorization_code", endpoint.form.Get("grant_type"))
	assert.Equal(t, "X", endpoint.form.Get("client_id"))
	assert.Equal(t, "abc123", endpoint.form.Get("code"))
	assert.Equal(t, "https://example.com/callback", endpoint.form.Get("redirect_uri"))
	assert.False(t, endpoint.form.Has("client_secret"))
	assert.False(t, endpoint.form.Has("state"))
}

func TestExchangeCode_Naver(t *testing.T) {
	endpoint := &tokenEndpoint{status: http.StatusOK, body: `{"access_token":"ntok","token_type":"bearer"}`}
	srv := httptest.NewServer(endpoint)
	defer srv.Close()

	c := newNaverClient(t, srv.URL, srv.URL)

	tok, err := c.ExchangeCode(context.Background(), "code-1", ExchangeParams{State: "st-9"})
	require.NoError(t, err)
	assert.Equal(t, "ntok", tok)

	assert.Equal(t, "naver-id", endpoint.form.Get("client_id"))
	assert.Equal(t, "naver-secret", endpoint.form.Get("client_secret"))
	assert.Equal(t, "st-9", endpoint.form.Get("state"))
	assert.False(t, endpoint.form.Has("redirect_uri"))
}

func TestExchangeCode_NaverRequiresState(t *testing.T) {
	endpoint := &tokenEndpoint{status: http.StatusOK, body: `{"access_token":"ntok"}`}
	srv := httptest.NewServer(endpoint)
	defer srv.Close()

	c := newNaverClient(t, srv.URL, srv.URL)

	_, err := c.ExchangeCode(context.Background(), "code-1", ExchangeParams{})
	require.ErrorIs(t, err, domain.ErrProviderExchange)
	assert.Nil(t, endpoint.form, "no request should reach the provider")
}

func TestExchangeCode_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "missing access_token", status: http.StatusOK, body: `{"token_type":"bearer"}`},
		{name: "malformed json", status: http.StatusOK, body: `{"access_token":`},
		{name: "non-2xx", status: http.StatusBadRequest, body: `{"error":"invalid_grant"}`},
		{name: "error in 200 body", status: http.StatusOK, body: `{"error":"invalid_request","error_description":"bad state"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(&tokenEndpoint{status: tt.status, body: tt.body})
			defer srv.Close()

			c := newKakaoClient(t, srv.URL, srv.URL)

			_, err := c.ExchangeCode(context.Background(), "abc123", ExchangeParams{})
			require.ErrorIs(t, err, domain.ErrProviderExchange)
		})
	}
}

func TestExchangeCode_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := Kakao("X", "https://example.com/callback")
	cfg.TokenURL = srv.URL
	cfg.ProfileURL = srv.URL
	c, err := New(cfg, nil, 50*time.Millisecond)
	require.NoError(t, err)

	start := time.Now()
	_, err = c.ExchangeCode(context.Background(), "abc123", ExchangeParams{})
	require.ErrorIs(t, err, domain.ErrProviderExchange)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchProfile_Kakao(t *testing.T) {
	var gotMethod, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"properties":{"nickname":"김싸피","profile_image":"http://img/p.png"}}`))
	}))
	defer srv.Close()

	c := newKakaoClient(t, srv.URL, srv.URL)

	profile, err := c.FetchProfile(context.Background(), "ptok1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "Bearer ptok1", gotAuth)
	assert.Equal(t, domain.ProviderKakao, profile.Provider)
	assert.Equal(t, "42", profile.ProviderUserID)
	assert.Equal(t, "김싸피", profile.Name)
	assert.Equal(t, "http://img/p.png", profile.ProfileURI)
}

func TestDecodeKakaoProfile_NameSources(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
	}{
		{name: "top-level name", body: `{"id": 42, "name":"김싸피"}`, wantName: "김싸피"},
		{name: "properties", body: `{"id":42,"properties":{"nickname":"props"}}`, wantName: "props"},
		{name: "account profile first", body: `{"id":42,"name":"top","kakao_account":{"profile":{"nickname":"account"}}}`, wantName: "account"},
		{name: "none", body: `{"id":42}`, wantName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := decodeKakaoProfile([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "42", profile.ProviderUserID)
			assert.Equal(t, tt.wantName, profile.Name)
		})
	}
}

func TestFetchProfile_Naver(t *testing.T) {
	var gotMethod, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultcode":"00","message":"success","response":{"id":"nv-1","nickname":"ssafy","name":"김싸피","profile_image":"http://img/n.png"}}`))
	}))
	defer srv.Close()

	c := newNaverClient(t, srv.URL, srv.URL)

	profile, err := c.FetchProfile(context.Background(), "ntok")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "Bearer ntok", gotAuth)
	assert.Equal(t, domain.ProviderNaver, profile.Provider)
	assert.Equal(t, "nv-1", profile.ProviderUserID)
	assert.Equal(t, "김싸피", profile.Name)
}

func TestFetchProfile_Failures(t *testing.T) {
	tests := []struct {
		name   string
		naver  bool
		status int
		body   string
	}{
		{name: "kakao unauthorized", status: http.StatusUnauthorized, body: `{"msg":"this access token does not exist","code":-401}`},
		{name: "kakao missing id", status: http.StatusOK, body: `{"properties":{}}`},
		{name: "kakao wrong type", status: http.StatusOK, body: `{"id":"not-a-number"}`},
		{name: "naver result code", naver: true, status: http.StatusOK, body: `{"resultcode":"024","message":"Authentication failed"}`},
		{name: "naver empty id", naver: true, status: http.StatusOK, body: `{"resultcode":"00","response":{}}`},
		{name: "not json", naver: true, status: http.StatusOK, body: `<html></html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var c *OAuthClient
			if tt.naver {
				c = newNaverClient(t, srv.URL, srv.URL)
			} else {
				c = newKakaoClient(t, srv.URL, srv.URL)
			}

			_, err := c.FetchProfile(context.Background(), "tok")
			require.ErrorIs(t, err, domain.ErrProfileFetch)
		})
	}
}

func TestRegistry(t *testing.T) {
	kakao := newKakaoClient(t, "http://localhost/token", "http://localhost/me")
	registry := NewRegistry(kakao)

	got, err := registry.Get(domain.ProviderKakao)
	require.NoError(t, err)
	assert.Same(t, kakao, got)

	_, err = registry.Get("github")
	require.ErrorIs(t, err, domain.ErrUnknownProvider)
}

func TestRedact(t *testing.T) {
	assert.Equal(t,
		`{"access_token":"[REDACTED]","token_type":"bearer"}`,
		Redact(`{"access_token":"ptok1","token_type":"bearer"}`))
	assert.Equal(t,
		`grant_type=authorization_code&client_secret=[REDACTED]&code=[REDACTED]`,
		Redact(`grant_type=authorization_code&client_secret=s3cr3t&code=abc123`))
	assert.Equal(t,
		`{"error_code":"KOE320"}`,
		Redact(`{"error_code":"KOE320"}`))
}
