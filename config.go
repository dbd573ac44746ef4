package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds runtime settings. Flags win over environment variables,
// which win over built-in defaults.
type Config struct {
	Addr      string
	DBPath    string
	PublicURL string
	ClientDir string
	JWTSecret string
	LogLevel  string

	// Bot mode: when BotURL is set the process runs headless lobby bots
	// against a relay server instead of serving one.
	BotURL   string
	BotRoom  string
	BotName  string
	BotCount int
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// loadEnvFile reads a .env file into the environment. A missing file is fine.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// LoadConfig parses args on top of the environment
func LoadConfig(args []string) (Config, error) {
	var cfg Config
	fset := flag.NewFlagSet("lobby-server", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", envOr("LOBBY_ADDR", ":8080"), "HTTP listen address")
	fset.StringVar(&cfg.DBPath, "db", envOr("LOBBY_DB", "lobby.db"), "SQLite database path (empty disables analytics)")
	fset.StringVar(&cfg.PublicURL, "public-url", envOr("LOBBY_PUBLIC_URL", "http://localhost:8080"), "Base URL used in join links")
	fset.StringVar(&cfg.ClientDir, "client", envOr("LOBBY_CLIENT_DIR", ""), "Static client directory to serve")
	fset.StringVar(&cfg.JWTSecret, "jwt-secret", envOr("LOBBY_JWT_SECRET", ""), "Host token signing secret (default: generated and stored in the db)")
	fset.StringVar(&cfg.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level")
	fset.StringVar(&cfg.BotURL, "bot", envOr("LOBBY_BOT_URL", ""), "Run bots against this ws:// URL")
	fset.StringVar(&cfg.BotRoom, "bot-room", envOr("LOBBY_BOT_ROOM", ""), "Room code for bots to join (empty: first bot creates one)")
	fset.StringVar(&cfg.BotName, "bot-name", envOr("LOBBY_BOT_NAME", "Bot"), "Bot name prefix")
	fset.IntVar(&cfg.BotCount, "bots", envIntOr("LOBBY_BOTS", 1), "Number of bots")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.BotCount < 1 {
		cfg.BotCount = 1
	}
	if cfg.BotCount > PaletteSize {
		cfg.BotCount = PaletteSize
	}
	return cfg, nil
}
