package config

import (
	"context"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	Storage struct {
		Driver        string `mapstructure:"driver"` // postgres, sqlite or memory
		SQLitePath    string `mapstructure:"sqlite_path"`
		MigrationsDir string `mapstructure:"migrations_dir"`
		JobCardsKey   string `mapstructure:"job_cards_key"`
		ManagedKey    string `mapstructure:"managed_key"`
		UsersKey      string `mapstructure:"users_key"`
	} `mapstructure:"storage"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Auth struct {
		Enabled       bool   `mapstructure:"enabled"`
		AdminName     string `mapstructure:"admin_name"`
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"auth"`

	Company struct {
		Name     string `mapstructure:"name"`
		Address  string `mapstructure:"address"`
		Email    string `mapstructure:"email"`
		Mobile   string `mapstructure:"mobile"`
		FormatNo string `mapstructure:"format_no"`
		RevNo    string `mapstructure:"rev_no"`
		RevDate  string `mapstructure:"rev_date"`
		// Managed job cards print their own format number.
		ManagedFormatNo string `mapstructure:"managed_format_no"`
	} `mapstructure:"company"`

	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		TTL      int    `mapstructure:"ttl_seconds"`
	} `mapstructure:"redis"`

	Backup R2Config `mapstructure:"backup"`

	WhatsApp struct {
		Provider      string `mapstructure:"provider"` // cloud, aisensy or empty
		APIKey        string `mapstructure:"api_key"`
		PhoneNumberID string `mapstructure:"phone_number_id"`
		BaseURL       string `mapstructure:"base_url"`
		TemplateName  string `mapstructure:"template_name"`
	} `mapstructure:"whatsapp"`

	SMS struct {
		APIKey   string `mapstructure:"api_key"`
		Route    string `mapstructure:"route"`
		SenderID string `mapstructure:"sender_id"`
		BaseURL  string `mapstructure:"base_url"`
	} `mapstructure:"sms"`

	Drafts struct {
		IdleMinutes int `mapstructure:"idle_minutes"`
	} `mapstructure:"drafts"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(envOr("CONFIG_FILE", "configs/config.yaml"))
	v.AutomaticEnv()
	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		log.Printf("[Config] No config file found, using defaults")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	applyEnv(&cfg)

	if cfg.Auth.Enabled && cfg.JWT.Secret == "" {
		if cfg.Backup.Configured() {
			log.Printf("[Config] JWT_SECRET not set, fetching from backup bucket...")
			cfg.JWT.Secret = fetchJWTSecret(cfg.Backup)
		}
		if cfg.JWT.Secret == "" {
			log.Fatal("JWT_SECRET not found in environment or backup bucket")
		}
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type", "X-Operator"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "jobcard_db")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "jobcards.db")
	v.SetDefault("storage.migrations_dir", "migrations")
	v.SetDefault("storage.job_cards_key", "manufacturingJobCards")
	v.SetDefault("storage.managed_key", "jobCardMaster")
	v.SetDefault("storage.users_key", "users")

	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "jobcard-backend")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.admin_name", "Administrator")
	v.SetDefault("auth.admin_email", "admin@localhost")

	v.SetDefault("company.name", "JYOTI HEAT TREATMENT")
	v.SetDefault("company.format_no", "JHTPL/QA/F/04")
	v.SetDefault("company.rev_no", "00")
	v.SetDefault("company.managed_format_no", "JHTPL/PROD/F/13")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.ttl_seconds", 300)

	v.SetDefault("backup.region", "auto")
	v.SetDefault("backup.prefix", "job-cards/")

	v.SetDefault("whatsapp.base_url", "https://graph.facebook.com/v18.0")
	v.SetDefault("sms.route", "q")

	v.SetDefault("drafts.idle_minutes", 120)
}

// applyEnv lets plain environment variables override the file, the way
// container deployments pass secrets.
func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}
	if driver := os.Getenv("STORAGE_DRIVER"); driver != "" {
		cfg.Storage.Driver = driver
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" {
		cfg.Storage.SQLitePath = path
	}

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}
	if os.Getenv("AUTH_ENABLED") == "true" {
		cfg.Auth.Enabled = true
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Auth.AdminPassword = pass
	}

	// K8s sets REDIS_SERVICE_HOST and REDIS_SERVICE_PORT for services
	if host := os.Getenv("REDIS_SERVICE_HOST"); host != "" {
		cfg.Redis.Host = host
		cfg.Redis.Enabled = true
	}
	if port := os.Getenv("REDIS_SERVICE_PORT"); port != "" {
		cfg.Redis.Port = port
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		cfg.Backup.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY"); v != "" {
		cfg.Backup.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_KEY"); v != "" {
		cfg.Backup.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		cfg.Backup.Bucket = v
	}

	if v := os.Getenv("WHATSAPP_PROVIDER"); v != "" {
		cfg.WhatsApp.Provider = v
	}
	if v := os.Getenv("WHATSAPP_API_KEY"); v != "" {
		cfg.WhatsApp.APIKey = v
	}
	if v := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); v != "" {
		cfg.WhatsApp.PhoneNumberID = v
	}
	if v := os.Getenv("FAST2SMS_API_KEY"); v != "" {
		cfg.SMS.APIKey = v
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DraftIdle is how long an untouched draft survives.
func (c *Config) DraftIdle() time.Duration {
	if c.Drafts.IdleMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.Drafts.IdleMinutes) * time.Minute
}

// fetchJWTSecret reads the JWT secret kept in the backup bucket for
// disaster recovery.
func fetchJWTSecret(r2 R2Config) string {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewR2Client(ctx, r2)
	if err != nil {
		log.Printf("[Config] Failed to configure R2 client: %v", err)
		return ""
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r2.Bucket),
		Key:    aws.String("config/jwt_secret.txt"),
	})
	if err != nil {
		log.Printf("[Config] Failed to fetch JWT secret from R2: %v", err)
		return ""
	}
	defer result.Body.Close()

	secret, err := io.ReadAll(result.Body)
	if err != nil {
		log.Printf("[Config] Failed to read JWT secret: %v", err)
		return ""
	}
	return string(secret)
}
