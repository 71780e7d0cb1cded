package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Email        EmailConfig
	SMS          SMSConfig
	Verification VerificationConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	MaxConns       int32
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Issuer            string
	AccessExpiryMins  int
	RefreshExpiryDays int
}

type EmailConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

type SMSConfig struct {
	BaseURL  string
	UserID   string
	Password string
	SenderID string
}

type VerificationConfig struct {
	CodeLength         int
	EmailExpiryMinutes int
	PhoneExpiryMinutes int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIGRATIONS_PATH", "migrations")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ISSUER", "socialgram")
	viper.SetDefault("JWT_ACCESS_EXPIRY_MINUTES", 30)
	viper.SetDefault("JWT_REFRESH_EXPIRY_DAYS", 7)
	viper.SetDefault("VERIFY_CODE_LENGTH", 4)
	viper.SetDefault("VERIFY_EMAIL_EXPIRY_MINUTES", 5)
	viper.SetDefault("VERIFY_PHONE_EXPIRY_MINUTES", 2)
	viper.SetDefault("LOG_PATH", "logs/")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			Name:           viper.GetString("DB_NAME"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASS"),
			MaxConns:       viper.GetInt32("DB_MAX_CONNS"),
			MigrationsPath: viper.GetString("DB_MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASS"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:            viper.GetString("JWT_SECRET"),
			Issuer:            viper.GetString("JWT_ISSUER"),
			AccessExpiryMins:  viper.GetInt("JWT_ACCESS_EXPIRY_MINUTES"),
			RefreshExpiryDays: viper.GetInt("JWT_REFRESH_EXPIRY_DAYS"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetString("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		SMS: SMSConfig{
			BaseURL:  viper.GetString("SMS_BASE_URL"),
			UserID:   viper.GetString("SMS_USER_ID"),
			Password: viper.GetString("SMS_PASS"),
			SenderID: viper.GetString("SMS_SENDER_ID"),
		},
		Verification: VerificationConfig{
			CodeLength:         viper.GetInt("VERIFY_CODE_LENGTH"),
			EmailExpiryMinutes: viper.GetInt("VERIFY_EMAIL_EXPIRY_MINUTES"),
			PhoneExpiryMinutes: viper.GetInt("VERIFY_PHONE_EXPIRY_MINUTES"),
		},
	}

	return config, nil
}
