package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// Timezone is the business timezone used for calendar-day filters.
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is either "mysql" or "sqlite".
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	// MigrationStrategy is "goose" (default) or "auto".
	MigrationStrategy string `mapstructure:"migration_strategy"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type PasswordConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type SessionConfig struct {
	CookieName         string `mapstructure:"cookie_name"`
	TokenCookieName    string `mapstructure:"token_cookie_name"`
	Secure             bool   `mapstructure:"secure"`
	SameSite           string `mapstructure:"same_site"`
	IdleTimeoutMinutes int    `mapstructure:"idle_timeout_minutes"`
	// ReauthMaxAgeHours is how old a sign-in may be before sensitive
	// operations demand a fresh one.
	ReauthMaxAgeHours int `mapstructure:"reauth_max_age_hours"`
}

// LoginLimitConfig bounds failed password sign-ins per email.
type LoginLimitConfig struct {
	MaxFailures   int `mapstructure:"max_failures"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type AuthConfig struct {
	// AdminCode promotes a password sign-up to the admin role.
	AdminCode string           `mapstructure:"admin_code"`
	Password  PasswordConfig   `mapstructure:"password"`
	JWT       JWTConfig        `mapstructure:"jwt"`
	Session   SessionConfig    `mapstructure:"session"`
	Login     LoginLimitConfig `mapstructure:"login"`
}

type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
	// PopupTimeoutSeconds bounds how long a popup flow may stay outstanding.
	PopupTimeoutSeconds int `mapstructure:"popup_timeout_seconds"`
}

type OAuthConfig struct {
	Google GoogleOAuthConfig `mapstructure:"google"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StorageConfig configures the local blob store that backs uploads.
type StorageConfig struct {
	Dir       string `mapstructure:"dir"`
	PublicURL string `mapstructure:"public_url"`
}
