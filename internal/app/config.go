package app

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/hotelres/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию domain.RecordStore.
type StorageDriver string

const (
	StorageDriverJSON     StorageDriver = "json"
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverSQLite   StorageDriver = "sqlite"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverS3       StorageDriver = "s3"
)

// Имена переменных окружения.
const (
	EnvHTTPAddr            = "HOTELRES_HTTP_ADDR"
	EnvMetricsAddr         = "HOTELRES_METRICS_ADDR"
	EnvLogLevel            = "HOTELRES_LOG_LEVEL"
	EnvStorageDriver       = "HOTELRES_STORAGE_DRIVER"
	EnvDataDir             = "HOTELRES_DATA_DIR"
	EnvSQLitePath          = "HOTELRES_SQLITE_PATH"
	EnvPostgresDSN         = "HOTELRES_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "HOTELRES_POSTGRES_AUTO_MIGRATE"
	EnvS3Bucket            = "HOTELRES_S3_BUCKET"
	EnvS3Region            = "HOTELRES_S3_REGION"
	EnvS3Endpoint          = "HOTELRES_S3_ENDPOINT"
	EnvS3Prefix            = "HOTELRES_S3_PREFIX"
	EnvS3PathStyle         = "HOTELRES_S3_PATH_STYLE"
	EnvKafkaBrokers        = "HOTELRES_KAFKA_BROKERS"
	EnvKafkaTopic          = "HOTELRES_KAFKA_TOPIC"
)

// Config описывает настройки запуска сервиса и CLI.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	LogLevel    string

	StorageDriver StorageDriver
	// DataDir: каталог JSON-файлов (драйвер json).
	DataDir    string
	SQLitePath string

	PostgresDSN         string
	PostgresAutoMigrate bool

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3Prefix    string
	S3PathStyle bool

	// KafkaBrokers: брокеры через запятую. Если пусто, события не публикуются.
	KafkaBrokers string
	KafkaTopic   string
}

// DefaultConfig возвращает базовые настройки.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		LogLevel:            "info",
		StorageDriver:       StorageDriverJSON,
		DataDir:             "data",
		SQLitePath:          filepath.Join("data", "hotelres.db"),
		PostgresAutoMigrate: true,
		S3Region:            "us-east-1",
		KafkaTopic:          kafka.TopicReservationEvents,
	}
}

// Brokers разбирает KafkaBrokers, отбрасывая пустые элементы.
func (c Config) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// ParseStorageDriver нормализует имя драйвера.
func ParseStorageDriver(value string) (StorageDriver, error) {
	driver := StorageDriver(strings.ToLower(strings.TrimSpace(value)))
	switch driver {
	case StorageDriverJSON, StorageDriverMemory, StorageDriverSQLite, StorageDriverPostgres, StorageDriverS3:
		return driver, nil
	default:
		return "", fmt.Errorf("unsupported storage driver %q (use json|memory|sqlite|postgres|s3)", value)
	}
}

// EnvLookup совместим с os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// LoadConfig накладывает переменные окружения на DefaultConfig.
// Некорректные значения не прерывают загрузку: поле сохраняет значение
// по умолчанию, а описание проблемы попадает в warnings.
func LoadConfig(lookup EnvLookup) (Config, []string) {
	cfg := DefaultConfig()
	var warnings []string

	setString := func(key string, target *string) {
		if value, ok := lookup(key); ok {
			if value = strings.TrimSpace(value); value != "" {
				*target = value
			}
		}
	}
	setBool := func(key string, target *bool) {
		value, ok := lookup(key)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		parsed, err := parseBool(value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*target = parsed
	}

	setString(EnvHTTPAddr, &cfg.HTTPAddr)
	setString(EnvMetricsAddr, &cfg.MetricsAddr)
	setString(EnvLogLevel, &cfg.LogLevel)
	setString(EnvDataDir, &cfg.DataDir)
	setString(EnvSQLitePath, &cfg.SQLitePath)
	setString(EnvPostgresDSN, &cfg.PostgresDSN)
	setBool(EnvPostgresAutoMigrate, &cfg.PostgresAutoMigrate)
	setString(EnvS3Bucket, &cfg.S3Bucket)
	setString(EnvS3Region, &cfg.S3Region)
	setString(EnvS3Endpoint, &cfg.S3Endpoint)
	setBool(EnvS3PathStyle, &cfg.S3PathStyle)
	setString(EnvKafkaBrokers, &cfg.KafkaBrokers)
	setString(EnvKafkaTopic, &cfg.KafkaTopic)

	// Пустой префикс допустим: объекты лежат в корне бакета.
	if value, ok := lookup(EnvS3Prefix); ok {
		cfg.S3Prefix = value
	}

	if value, ok := lookup(EnvStorageDriver); ok && strings.TrimSpace(value) != "" {
		driver, err := ParseStorageDriver(value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", EnvStorageDriver, err))
		} else {
			cfg.StorageDriver = driver
		}
	}

	return cfg, warnings
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed, nil
		}
		return false, fmt.Errorf("invalid bool value %q", value)
	}
}
