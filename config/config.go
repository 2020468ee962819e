package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Finance   FinanceConfig
	Reminders RemindersConfig
	Twilio    TwilioConfig
	Admin     AdminConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	NodeID   int64
	Timezone string
}

type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

type RedisConfig struct {
	URL string // empty disables redis
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

type LogConfig struct {
	Level  string
	Format string // json or console
}

type HTTPConfig struct {
	CORSAllowOrigins []string
	SlowRequest      time.Duration
	ShutdownTimeout  time.Duration
}

type FinanceConfig struct {
	// LaborInExpenses folds labor cost into an event's total_expenses.
	LaborInExpenses bool
}

type RemindersConfig struct {
	Enabled  bool
	Schedule string
}

type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	WhatsAppNumber string
	PhoneNumber    string
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != ""
}

type AdminConfig struct {
	Email    string
	Password string
	FullName string
}

// legacyEnv maps config keys to the plain env names used by earlier deployments.
var legacyEnv = map[string]string{
	"app.port":               "PORT",
	"database.url":           "DB_URL",
	"jwt.secret":             "JWT_SECRET",
	"jwt.expiry_hours":       "JWT_EXPIRY_HOURS",
	"redis.url":              "REDIS_URL",
	"twilio.account_sid":     "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":      "TWILIO_AUTH_TOKEN",
	"twilio.whatsapp_number": "TWILIO_WHATSAPP_NUMBER",
	"twilio.phone_number":    "TWILIO_PHONE_NUMBER",
}

// Load reads config.yaml (optional) and EVENTHALL_* environment variables.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("EVENTHALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, "EVENTHALL_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	v.SetDefault("finance.labor_in_expenses", true)
	v.SetDefault("reminders.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("app.name"),
			Env:      v.GetString("app.env"),
			Port:     v.GetString("app.port"),
			NodeID:   v.GetInt64("app.node_id"),
			Timezone: v.GetString("app.timezone"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			URL:             v.GetString("database.url"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("database.conn_max_lifetime"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
		},
		Redis: RedisConfig{URL: v.GetString("redis.url")},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Expiry: v.GetDuration("jwt.expiry"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins: splitList(v.GetStringSlice("http.cors_allow_origins")),
			SlowRequest:      v.GetDuration("http.slow_request"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
		},
		Finance: FinanceConfig{LaborInExpenses: v.GetBool("finance.labor_in_expenses")},
		Reminders: RemindersConfig{
			Enabled:  v.GetBool("reminders.enabled"),
			Schedule: v.GetString("reminders.schedule"),
		},
		Twilio: TwilioConfig{
			AccountSID:     v.GetString("twilio.account_sid"),
			AuthToken:      v.GetString("twilio.auth_token"),
			WhatsAppNumber: v.GetString("twilio.whatsapp_number"),
			PhoneNumber:    v.GetString("twilio.phone_number"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
			FullName: v.GetString("admin.full_name"),
		},
	}
	if hours := v.GetInt("jwt.expiry_hours"); cfg.JWT.Expiry == 0 && hours > 0 {
		cfg.JWT.Expiry = time.Duration(hours) * time.Hour
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "eventhall"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.NodeID == 0 {
		cfg.App.NodeID = 1
	}
	if cfg.App.Timezone == "" {
		cfg.App.Timezone = "Asia/Jerusalem"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5 * time.Minute
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}
	if cfg.JWT.Expiry == 0 {
		cfg.JWT.Expiry = 60 * time.Minute
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = cfg.App.Name
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.App.Env == "development" {
			cfg.Log.Format = "console"
		}
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if cfg.HTTP.SlowRequest == 0 {
		cfg.HTTP.SlowRequest = 200 * time.Millisecond
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Reminders.Schedule == "" {
		cfg.Reminders.Schedule = "@every 1m"
	}
	if cfg.Admin.FullName == "" {
		cfg.Admin.FullName = "Administrator"
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.URL == "" {
		return errors.New("database url is required (EVENTHALL_DATABASE_URL or DB_URL)")
	}
	if cfg.JWT.Secret == "" {
		return errors.New("jwt secret is required (EVENTHALL_JWT_SECRET or JWT_SECRET)")
	}
	if cfg.IsProduction() && len(cfg.JWT.Secret) < 32 {
		return errors.New("jwt secret must be at least 32 characters in production")
	}
	if _, err := time.LoadLocation(cfg.App.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.App.Timezone, err)
	}
	return nil
}

// splitList accepts both yaml lists and comma separated env values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
