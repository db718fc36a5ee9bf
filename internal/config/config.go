package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kirinyoku/dakshina/internal/pricing"
	"github.com/kirinyoku/dakshina/internal/travel"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	Storage   string
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Payment   PaymentConfig
	Booking   BookingConfig
	Pricing   pricing.Rates
	Travel    travel.Rates
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// KafkaConfig is optional; with no brokers events are delivered in-process.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type AuthConfig struct {
	JWTSecret string
}

type PaymentConfig struct {
	KeyID     string
	KeySecret string
}

type BookingConfig struct {
	NumberPrefix string
	Location     *time.Location
	MaxEventDays int
}

type CacheConfig struct {
	BookingTTL     time.Duration
	DistanceTTL    time.Duration
	IdempotencyTTL time.Duration
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := envInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	shutdownTimeout, err := envDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host:            envString("SERVER_HOST", "localhost"),
		Port:            serverPort,
		ShutdownTimeout: shutdownTimeout,
	}

	storage := strings.ToLower(envString("STORAGE_DRIVER", StoragePostgres))
	if storage != StoragePostgres && storage != StorageMemory {
		return nil, fmt.Errorf("%s: invalid STORAGE_DRIVER %q", op, storage)
	}

	var postgresCfg PostgresConfig
	if storage == StoragePostgres {
		postgresCfg, err = loadPostgres()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	redisEnabled, err := envBool("REDIS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := envInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Enabled:  redisEnabled,
		Addr:     envString("REDIS_ADDR", "localhost:6380"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	kafkaCfg := KafkaConfig{
		Brokers: envList("KAFKA_BROKERS"),
		Topic:   envString("KAFKA_TOPIC", "booking.events"),
		GroupID: envString("KAFKA_GROUP_ID", "dakshina-notifier"),
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("%s: missing JWT_SECRET", op)
	}

	paymentSecret := os.Getenv("PAYMENT_KEY_SECRET")
	if paymentSecret == "" {
		return nil, fmt.Errorf("%s: missing PAYMENT_KEY_SECRET", op)
	}

	paymentCfg := PaymentConfig{
		KeyID:     envString("PAYMENT_KEY_ID", "rzp_test_dakshina"),
		KeySecret: paymentSecret,
	}

	bookingCfg, err := loadBooking()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pricingCfg, err := loadPricing()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	travelCfg, err := loadTravel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheCfg, err := loadCache()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rlLimit, err := envInt("RATE_LIMIT_BOOKINGS", 5)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rlWindow, err := envDuration("RATE_LIMIT_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Config{
		Server:    serverCfg,
		Storage:   storage,
		Postgres:  postgresCfg,
		Redis:     redisCfg,
		Kafka:     kafkaCfg,
		Auth:      AuthConfig{JWTSecret: jwtSecret},
		Payment:   paymentCfg,
		Booking:   bookingCfg,
		Pricing:   pricingCfg,
		Travel:    travelCfg,
		Cache:     cacheCfg,
		RateLimit: RateLimitConfig{Limit: rlLimit, Window: rlWindow},
	}, nil
}

// DSN renders the pgx connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSLMode,
	)
}

func loadPostgres() (PostgresConfig, error) {
	port, err := envInt("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	maxConns, err := envInt("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return PostgresConfig{}, err
	}

	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_USER")
	}

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_PASSWORD")
	}

	name := os.Getenv("POSTGRES_DB")
	if name == "" {
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_DB")
	}

	return PostgresConfig{
		User:     user,
		Password: password,
		Name:     name,
		Host:     envString("POSTGRES_HOST", "localhost"),
		Port:     port,
		SSLMode:  envString("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}, nil
}

func loadBooking() (BookingConfig, error) {
	tz := envString("BOOKING_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return BookingConfig{}, fmt.Errorf("invalid BOOKING_TIMEZONE: %w", err)
	}

	maxDays, err := envInt("BOOKING_MAX_EVENT_DAYS", 30)
	if err != nil {
		return BookingConfig{}, err
	}

	return BookingConfig{
		NumberPrefix: envString("BOOKING_PREFIX", "PJ"),
		Location:     loc,
		MaxEventDays: maxDays,
	}, nil
}

func loadPricing() (pricing.Rates, error) {
	rates := pricing.DefaultRates()

	var err error
	if rates.PlatformFeePercent, err = envPercent("PLATFORM_FEE_PERCENT", rates.PlatformFeePercent); err != nil {
		return pricing.Rates{}, err
	}
	if rates.TravelServiceFeePercent, err = envPercent("TRAVEL_SERVICE_FEE_PERCENT", rates.TravelServiceFeePercent); err != nil {
		return pricing.Rates{}, err
	}
	if rates.GSTPercent, err = envPercent("GST_PERCENT", rates.GSTPercent); err != nil {
		return pricing.Rates{}, err
	}

	if err := rates.Validate(); err != nil {
		return pricing.Rates{}, err
	}

	return rates, nil
}

func loadTravel() (travel.Rates, error) {
	rates := travel.DefaultRates()

	var err error
	if rates.SelfDrivePerKm, err = envFloat("TRAVEL_SELF_DRIVE_PER_KM", rates.SelfDrivePerKm); err != nil {
		return travel.Rates{}, err
	}
	if rates.CabPerKm, err = envFloat("TRAVEL_CAB_PER_KM", rates.CabPerKm); err != nil {
		return travel.Rates{}, err
	}
	if rates.BusPerKm, err = envFloat("TRAVEL_BUS_PER_KM", rates.BusPerKm); err != nil {
		return travel.Rates{}, err
	}

	perDiem, err := envInt("TRAVEL_PER_DIEM", int(rates.PerDiem))
	if err != nil {
		return travel.Rates{}, err
	}
	rates.PerDiem = int64(perDiem)

	transfer, err := envInt("TRAVEL_LOCAL_TRANSFER", int(rates.LocalTransfer))
	if err != nil {
		return travel.Rates{}, err
	}
	rates.LocalTransfer = int64(transfer)

	if rates.ServiceFeePercent, err = envPercent("TRAVEL_SERVICE_FEE_PERCENT", rates.ServiceFeePercent); err != nil {
		return travel.Rates{}, err
	}
	if rates.GSTPercent, err = envPercent("GST_PERCENT", rates.GSTPercent); err != nil {
		return travel.Rates{}, err
	}

	return rates, nil
}

func loadCache() (CacheConfig, error) {
	bookingTTL, err := envDuration("CACHE_BOOKING_TTL", 30*time.Second)
	if err != nil {
		return CacheConfig{}, err
	}

	distanceTTL, err := envDuration("CACHE_DISTANCE_TTL", 24*time.Hour)
	if err != nil {
		return CacheConfig{}, err
	}

	idemTTL, err := envDuration("IDEMPOTENCY_TTL", 2*time.Hour)
	if err != nil {
		return CacheConfig{}, err
	}

	return CacheConfig{
		BookingTTL:     bookingTTL,
		DistanceTTL:    distanceTTL,
		IdempotencyTTL: idemTTL,
	}, nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, def bool) (bool, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return v, nil
}

// envPercent reads a percent number ("18") and returns the fraction (0.18).
func envPercent(key string, def float64) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("invalid %s: must be between 0 and 100", key)
	}
	return v / 100, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
