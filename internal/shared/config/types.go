package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret       string `mapstructure:"secret"`
	ValidityDays int    `mapstructure:"validity_days"`
}

type AuthConfig struct {
	BcryptCost int       `mapstructure:"bcrypt_cost"`
	JWT        JWTConfig `mapstructure:"jwt"`
}

// BillingConfig carries the Stripe credentials plus the externally
// supplied plan mapping tables. Price and product mappings translate
// Stripe identifiers into internal plan names; quotas override the
// built-in monthly lead limits per plan.
type BillingConfig struct {
	StripeSecretKey     string            `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string            `mapstructure:"stripe_webhook_secret"`
	ReconcileTTLMinutes int               `mapstructure:"reconcile_ttl_minutes"`
	RequestTimeoutSecs  int               `mapstructure:"request_timeout_seconds"`
	PlanValidityDays    int               `mapstructure:"plan_validity_days"`
	PricePlans          map[string]string `mapstructure:"price_plans"`
	ProductPlans        map[string]string `mapstructure:"product_plans"`
	Quotas              map[string]int    `mapstructure:"quotas"`
}

type EmailConfig struct {
	SMTPHost         string `mapstructure:"smtp_host"`
	SMTPPort         int    `mapstructure:"smtp_port"`
	SMTPUser         string `mapstructure:"smtp_user"`
	SMTPPassword     string `mapstructure:"smtp_password"`
	FromAddress      string `mapstructure:"from_address"`
	FromName         string `mapstructure:"from_name"`
	MandateRecipient string `mapstructure:"mandate_recipient"`
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
