package kiosk

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/stemsi/exstem-seb/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the kiosk process settings.
type Config struct {
	Env              string
	WebURL           *url.URL
	APIURL           *url.URL
	QuitPasswordHash []byte
	BrowserKey       string
	IPCAddr          string
	GatewayAddr      string
	TokenFile        string
	LogLevel         string
	LogFormat        string
}

// IsDevelopment reports whether the kiosk runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Env != config.EnvProduction
}

// LoadConfig reads KIOSK_* variables, loading .env when present.
// A plaintext KIOSK_QUIT_PASSWORD is hashed immediately and never retained.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	webURL, err := parseOrigin("KIOSK_WEB_URL", config.GetEnv("KIOSK_WEB_URL", "http://localhost:5173"))
	if err != nil {
		return nil, err
	}
	apiURL, err := parseOrigin("KIOSK_API_URL", config.GetEnv("KIOSK_API_URL", "http://localhost:8080"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:         strings.ToLower(config.GetEnv("KIOSK_ENV", config.EnvDevelopment)),
		WebURL:      webURL,
		APIURL:      apiURL,
		BrowserKey:  os.Getenv("KIOSK_BROWSER_KEY"),
		IPCAddr:     config.GetEnv("KIOSK_IPC_ADDR", "127.0.0.1:47800"),
		GatewayAddr: config.GetEnv("KIOSK_GATEWAY_ADDR", "127.0.0.1:47801"),
		TokenFile:   config.GetEnv("KIOSK_TOKEN_FILE", defaultTokenFile()),
		LogLevel:    config.GetEnv("LOG_LEVEL", "info"),
		LogFormat:   config.GetEnv("LOG_FORMAT", "pretty"),
	}

	for name, addr := range map[string]string{"KIOSK_IPC_ADDR": cfg.IPCAddr, "KIOSK_GATEWAY_ADDR": cfg.GatewayAddr} {
		if err := requireLoopback(addr); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	if hash := os.Getenv("KIOSK_QUIT_PASSWORD_HASH"); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("KIOSK_QUIT_PASSWORD_HASH: %w", err)
		}
		cfg.QuitPasswordHash = []byte(hash)
	} else if pw := os.Getenv("KIOSK_QUIT_PASSWORD"); pw != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash quit password: %w", err)
		}
		cfg.QuitPasswordHash = hash
	}

	return cfg, nil
}

func parseOrigin(name, raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s: %q is not an http(s) origin", name, raw)
	}
	return u, nil
}

// requireLoopback rejects listen addresses reachable from outside the machine.
func requireLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%q is not a loopback address", addr)
	}
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "exstem-kiosk", "token.json")
}
