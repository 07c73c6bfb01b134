package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database    *Database
	HTTP        *HTTP
	Token       *Token
	Admin       *Admin
	Orders      *Orders
	Notifier    *Notifier
	Idempotency *Idempotency
	App         *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

const (
	BrokerNone  = ""
	BrokerKafka = "kafka"
	BrokerAMQP  = "amqp"
)

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Token struct {
	KeyHex string        `env:"TOKEN_KEY"`
	TTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

type Admin struct {
	Login    string `env:"ADMIN_LOGIN"`
	Password string `env:"ADMIN_PASSWORD"`
}

type Orders struct {
	NotificationLimit int `env:"ORDER_NOTIFICATION_LIMIT" envDefault:"50"`
}

type Notifier struct {
	Broker       string   `env:"NOTIFIER_BROKER"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"seller-notifications"`
	AMQPURL      string   `env:"AMQP_URL"`
	AMQPQueue    string   `env:"AMQP_QUEUE" envDefault:"seller-notifications"`
	Workers      int      `env:"NOTIFIER_WORKERS" envDefault:"4"`
	QueueSize    int      `env:"NOTIFIER_QUEUE_SIZE" envDefault:"256"`
}

type Idempotency struct {
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var token Token
	var admin Admin
	var orders Orders
	var notifier Notifier
	var idem Idempotency
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string, empty for in-memory storage")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&token.KeyHex, "k", "", "Hex encoded token key")
	flag.StringVar(&notifier.Broker, "b", "", "Seller notification broker: kafka / amqp")
	flag.StringVar(&idem.RedisURL, "r", "", "Redis URL for idempotency keys")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&token)
	if err != nil {
		return nil, fmt.Errorf("error parsing token config: %w", err)
	}
	err = env.Parse(&admin)
	if err != nil {
		return nil, fmt.Errorf("error parsing admin config: %w", err)
	}
	err = env.Parse(&orders)
	if err != nil {
		return nil, fmt.Errorf("error parsing orders config: %w", err)
	}
	err = env.Parse(&notifier)
	if err != nil {
		return nil, fmt.Errorf("error parsing notifier config: %w", err)
	}
	err = env.Parse(&idem)
	if err != nil {
		return nil, fmt.Errorf("error parsing idempotency config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	switch notifier.Broker {
	case BrokerNone, BrokerKafka, BrokerAMQP:
	default:
		return nil, fmt.Errorf("unknown notifier broker %q", notifier.Broker)
	}

	config := Config{
		Database:    &db,
		HTTP:        &http,
		Token:       &token,
		Admin:       &admin,
		Orders:      &orders,
		Notifier:    &notifier,
		Idempotency: &idem,
		App:         &app,
	}

	return &config, nil
}
