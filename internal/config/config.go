package config

import (
	"context"
	"fmt"

	"github.com/fitshare/auth-service/internal/domain"
	"github.com/sethvargo/go-envconfig"
)

const minSecretLength = 32

type Config struct {
	Server    ServerConfig    `env:",prefix=SERVER_"`
	Postgres  PostgresConfig  `env:",prefix=POSTGRES_"`
	Redis     RedisConfig     `env:",prefix=REDIS_"`
	JWT       JWTConfig       `env:",prefix=JWT_"`
	OAuth     OAuthConfig     `env:",prefix=OAUTH_"`
	Kakao     KakaoConfig     `env:",prefix=KAKAO_"`
	Naver     NaverConfig     `env:",prefix=NAVER_"`
	RateLimit RateLimitConfig `env:",prefix=RATE_LIMIT_"`
	CORS      CORSConfig      `env:",prefix=CORS_"`
	Env       string          `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type PostgresConfig struct {
	Host        string `env:"HOST,default=localhost"`
	Port        string `env:"PORT,default=5432"`
	User        string `env:"USER,default=fitshare"`
	Password    string `env:"PASSWORD,default=fitshare_password"`
	DBName      string `env:"DB,default=fitshare"`
	SSLMode     string `env:"SSLMODE,default=disable"`
	AutoMigrate bool   `env:"AUTO_MIGRATE,default=true"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type JWTConfig struct {
	Secret             string   `env:"SECRET,required"`
	AccessTokenExpiry  Duration `env:"ACCESS_TOKEN_EXPIRY,default=30m"`
	RefreshTokenExpiry Duration `env:"REFRESH_TOKEN_EXPIRY,default=14d"`
}

// OAuthConfig holds settings shared by every identity provider.
type OAuthConfig struct {
	RedirectURI string   `env:"REDIRECT_URI,default=https://i6a405.p.ssafy.io/callback"`
	HTTPTimeout Duration `env:"HTTP_TIMEOUT,default=10s"`
}

type KakaoConfig struct {
	ClientID   string `env:"CLIENT_ID"`
	TokenURL   string `env:"TOKEN_URL,default=https://kauth.kakao.com/oauth/token"`
	ProfileURL string `env:"PROFILE_URL,default=https://kapi.kakao.com/v2/user/me"`
}

type NaverConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	TokenURL     string `env:"TOKEN_URL,default=https://nid.naver.com/oauth2.0/token"`
	ProfileURL   string `env:"PROFILE_URL,default=https://openapi.naver.com/v1/nid/me"`
}

type RateLimitConfig struct {
	Requests int      `env:"REQUESTS,default=10"`
	Window   Duration `env:"WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// DSN returns PostgreSQL connection string
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, nil)
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var config Config

	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &config,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks invariants that envconfig tags cannot express.
func (c *Config) Validate() error {
	if len(c.JWT.Secret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters long: %w", minSecretLength, domain.ErrSigningConfiguration)
	}
	if c.JWT.AccessTokenExpiry.Duration <= 0 {
		return fmt.Errorf("JWT_ACCESS_TOKEN_EXPIRY must be positive: %w", domain.ErrSigningConfiguration)
	}
	if c.JWT.RefreshTokenExpiry.Duration <= 0 {
		return fmt.Errorf("JWT_REFRESH_TOKEN_EXPIRY must be positive")
	}
	if c.OAuth.HTTPTimeout.Duration <= 0 {
		return fmt.Errorf("OAUTH_HTTP_TIMEOUT must be positive")
	}
	return nil
}
