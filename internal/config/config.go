package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings from environment variables and an
// optional config file. No ambient globals: everything downstream receives
// this struct (or a slice of it) at construction.
type Config struct {
	Port        string
	DBDSN       string
	LogFile     string
	FrontendURL string
	PageSize    int
	SeedDemo    bool
	TemplateDir string
	JWT         struct {
		Secret    string
		TTL       time.Duration
		CookieTTL time.Duration
	}
	Reset struct {
		TTL time.Duration
	}
	SMTP struct {
		Addr string
		From string
	}
}

// Load reads configuration with the CHMLCART_ env prefix. A .env file in the
// working directory fills unset variables.
func Load() (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("CHMLCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8000")
	v.SetDefault("db.dsn", "chmlcart.db")
	v.SetDefault("log.file", "")
	v.SetDefault("frontend.url", "http://localhost:3000")
	v.SetDefault("page.size", 10)
	v.SetDefault("seed.demo", true)
	v.SetDefault("template.dir", "./web/templates")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "168h")
	v.SetDefault("jwt.cookiettl", "168h")
	v.SetDefault("reset.ttl", "30m")
	v.SetDefault("smtp.addr", "localhost:1025")
	v.SetDefault("smtp.from", "no-reply@chmlcart.test")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	cfg.Port = v.GetString("port")
	cfg.DBDSN = v.GetString("db.dsn")
	cfg.LogFile = v.GetString("log.file")
	cfg.FrontendURL = strings.TrimRight(v.GetString("frontend.url"), "/")
	cfg.PageSize = v.GetInt("page.size")
	cfg.SeedDemo = v.GetBool("seed.demo")
	cfg.TemplateDir = v.GetString("template.dir")
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.TTL = v.GetDuration("jwt.ttl")
	cfg.JWT.CookieTTL = v.GetDuration("jwt.cookiettl")
	cfg.Reset.TTL = v.GetDuration("reset.ttl")
	cfg.SMTP.Addr = v.GetString("smtp.addr")
	cfg.SMTP.From = v.GetString("smtp.from")

	if cfg.JWT.Secret == "" {
		return Config{}, fmt.Errorf("CHMLCART_JWT_SECRET is required")
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	return cfg, nil
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.Trim(strings.TrimSpace(line[eq+1:]), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
