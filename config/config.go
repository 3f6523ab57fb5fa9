package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	DBDriver     string
	DBUser       string
	DBPassword   string
	DBHost       string
	DBPort       string
	DBName       string
	StaffAPIKey  string
	RabbitMQURL  string
	OrderQueue   string
	RedisAddr    string
	MenuCacheTTL int
	Port         string
}

func LoadConfig() *Config {
	return &Config{
		DBDriver:     getEnv("DB_DRIVER", "mysql"),
		DBUser:       getEnv("DB_USER", "root"),
		DBPassword:   getEnv("DB_PASSWORD", ""),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "3306"),
		DBName:       getEnv("DB_NAME", "canteen"),
		StaffAPIKey:  getEnv("STAFF_API_KEY", ""),
		RabbitMQURL:  getEnv("RABBITMQ_URL", ""),
		OrderQueue:   getEnv("ORDER_QUEUE", "canteen_orders"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		MenuCacheTTL: getEnvInt("MENU_CACHE_TTL_SECONDS", 60),
		Port:         getEnv("PORT", "8080"),
	}
}

// InitDB opens the configured database. DB_DRIVER=sqlite uses a local file,
// which is handy for development without a MySQL instance.
func InitDB(cfg *Config) (*gorm.DB, error) {
	if cfg.DBDriver == "sqlite" {
		return gorm.Open(sqlite.Open(getEnv("SQLITE_PATH", "canteen.db")), &gorm.Config{})
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
