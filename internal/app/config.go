package app

import "os"

// Config описывает минимальные настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string
	// CatalogDSN указывает на общую базу меню. Пустое значение
	// переключает каталог на in-memory хранилище.
	CatalogDSN string
	// BranchDSN указывает на базу точки продаж (заказы, гости, outbox).
	BranchDSN    string
	KafkaBrokers string
}

// DefaultConfig возвращает базовые адреса для HTTP API и метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:    ":8080",
		MetricsAddr: ":9090",
	}
}

// ConfigFromEnv собирает конфигурацию из переменных окружения,
// подставляя значения по умолчанию для незаданных адресов.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if addr := os.Getenv("CAFE_HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}
	if addr := os.Getenv("CAFE_METRICS_ADDR"); addr != "" {
		cfg.MetricsAddr = addr
	}
	cfg.CatalogDSN = os.Getenv("CAFE_CATALOG_DSN")
	cfg.BranchDSN = os.Getenv("CAFE_BRANCH_DSN")
	cfg.KafkaBrokers = os.Getenv("KAFKA_BROKERS")
	return cfg
}
