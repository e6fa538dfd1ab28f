package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                 string
		Addr                 string
		DebugAddr            string
		ShutdownTimeout      time.Duration
		TokenExpiration      time.Duration
		PasswordResetTimeout time.Duration
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string
		AppName  string
		WorkDir  string

		SecretKey        []byte
		FrontendBaseURL  string
		DefaultFromEmail mail.Address

		SendgridAPIKey string
		RollbarToken   string
		GCPProjectID   string

		Server ServerConfig
	}
)

// NewConfig loads configuration from the environment, with an optional
// config/.env.<env> file for local development.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Homework Helpers")
	conf.SetDefault("secretKey", "x1u+nm0b$z&0n@vn513*j3r&^qe05d#hwhelpers")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("shutdownTimeout", 20*time.Second)
	conf.SetDefault("tokenExpiration", 7*24*time.Hour)
	conf.SetDefault("passwordResetTimeout", 3*24*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:     conf.GetBool("debug"),
		TestMode:  env == "TEST",
		Env:       env,
		Build:     conf.GetString("build"),
		AppName:   conf.GetString("appName"),
		WorkDir:   Getwd(),
		SecretKey: []byte(conf.GetString("secretKey")),
		FrontendBaseURL: conf.GetString("frontendBaseURL"),
		DefaultFromEmail: mail.Address{
			Name:    conf.GetString("appName"),
			Address: conf.GetString("defaultFromEmail"),
		},
		SendgridAPIKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),
		GCPProjectID:   conf.GetString("gcpProjectId"),
		Server: ServerConfig{
			Host:                 conf.GetString("serverHost"),
			Addr:                 conf.GetString("serverAddr"),
			DebugAddr:            conf.GetString("serverDebugAddr"),
			ShutdownTimeout:      conf.GetDuration("shutdownTimeout"),
			TokenExpiration:      conf.GetDuration("tokenExpiration"),
			PasswordResetTimeout: conf.GetDuration("passwordResetTimeout"),
		},
	}
}
