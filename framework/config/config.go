package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig     `toml:"app"`
	Locator LocatorConfig `toml:"locator"`
	Log     LogConfig     `toml:"log"`
	Inspect InspectConfig `toml:"inspect"`
}

type AppConfig struct {
	Name string `toml:"name"`
	Env  string `toml:"env"` // local | production | testing
}

// LocatorConfig drives container.Locator options.
type LocatorConfig struct {
	AutoProvision bool   `toml:"auto_provision"`
	GlobalName    string `toml:"global_name"`
	SceneName     string `toml:"scene_name"`
	PersistGlobal bool   `toml:"persist_global"`
}

type LogConfig struct {
	Level  string `toml:"level"`  // trace | debug | info | warn | error | disabled
	Format string `toml:"format"` // console | json
}

type InspectConfig struct {
	Addr string `toml:"addr"`
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name: env("APP_NAME", "go-locator"),
			Env:  env("APP_ENV", "local"),
		},
		Locator: LocatorConfig{
			AutoProvision: envBool("LOCATOR_AUTO_PROVISION", true),
			GlobalName:    env("LOCATOR_GLOBAL_NAME", "ServiceLocator [Global]"),
			SceneName:     env("LOCATOR_SCENE_NAME", "ServiceLocator [Scene]"),
			PersistGlobal: envBool("LOCATOR_PERSIST_GLOBAL", true),
		},
		Log: LogConfig{
			Level:  env("LOG_LEVEL", "info"),
			Format: env("LOG_FORMAT", "console"),
		},
		Inspect: InspectConfig{
			Addr: env("INSPECT_ADDR", ":8089"),
		},
	}
}

// LoadFile overlays the TOML file at path onto cfg. Keys absent from the file
// keep their current values.
//
//	[locator]
//	global_name = "Services"
//	auto_provision = false
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
