package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values, read from config.yaml and overridable
// via environment variables.
type Config struct {
	AppEnv          string
	AppPort         string
	ShutdownTimeout time.Duration

	// MongoDB
	MongoURI string
	MongoDB  string

	// Redis (optional; cross-instance event fan-out)
	RedisAddr string
	RedisPwd  string
	RedisDB   int

	// Kafka (optional; message event mirror)
	KafkaBrokers []string
	KafkaTopic   string

	// JWT: RS256 public key of the identity provider, or an HMAC secret for
	// local development.
	JWTPublicKeyPath string
	JWTSecret        string

	// Object storage (optional; media uploads)
	AWSRegion           string
	S3Bucket            string
	S3Endpoint          string
	S3PublicRead        bool
	S3PresignTTLSeconds int
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// no file is fine, env only
	}

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DB", "chatx")
	viper.SetDefault("KAFKA_TOPIC", "chatx_messages")
	viper.SetDefault("S3_PRESIGN_TTL_SECONDS", 900)

	cfg := &Config{
		AppEnv:              viper.GetString("APP_ENV"),
		AppPort:             viper.GetString("APP_PORT"),
		ShutdownTimeout:     viper.GetDuration("SHUTDOWN_TIMEOUT") * time.Second,
		MongoURI:            viper.GetString("MONGO_URI"),
		MongoDB:             viper.GetString("MONGO_DB"),
		RedisAddr:           viper.GetString("REDIS_ADDR"),
		RedisPwd:            viper.GetString("REDIS_PASSWORD"),
		RedisDB:             viper.GetInt("REDIS_DB"),
		KafkaBrokers:        viper.GetStringSlice("KAFKA_BROKERS"),
		KafkaTopic:          viper.GetString("KAFKA_TOPIC"),
		JWTPublicKeyPath:    viper.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		AWSRegion:           viper.GetString("AWS_REGION"),
		S3Bucket:            viper.GetString("S3_BUCKET"),
		S3Endpoint:          viper.GetString("S3_ENDPOINT"),
		S3PublicRead:        viper.GetBool("S3_PUBLIC_READ"),
		S3PresignTTLSeconds: viper.GetInt("S3_PRESIGN_TTL_SECONDS"),
	}
	return cfg, nil
}
