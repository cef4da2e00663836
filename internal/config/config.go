// -----------------------------------------------------------------------------
// Config Package
// -----------------------------------------------------------------------------
// Bu dosya, querykit'in merkezi konfigürasyon yönetimini sağlar. Ortam
// değişkenlerini (ve varsa .env dosyasını) okuyarak veritabanı, Redis sorgu
// logu ve log ayarlarını tip güvenli bir yapıda toplar.
//
// Eksik ortam değişkenlerinde varsayılan değerler kullanılır ve uyarı
// loglanır. .env dosyası github.com/joho/godotenv ile yüklenir; zaten
// tanımlı ortam değişkenlerinin üzerine yazılmaz.
// -----------------------------------------------------------------------------

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/biyonik/querykit/pkg/database"
)

// Config, uygulamanın merkezi yapılandırma nesnesidir.
//
// Nested struct yapısı kullanılarak ilgili ayarlar gruplandırılmıştır:
//   - App: Uygulama genel ayarları
//   - DB: Veritabanı bağlantısı ve havuz ayarları
//   - Redis: Redis bağlantısı ve sorgu logu ayarları
//   - Log: slog seviye ve format ayarları
type Config struct {
	App struct {
		Name string // Uygulama adı
		Env  string // Ortam (development, production, test)
	}

	DB struct {
		Driver          string        // mysql, postgres, pgx, sqlite
		DSN             string        // Veritabanı bağlantı string'i
		MaxOpenConns    int           // Maksimum açık bağlantı sayısı
		MaxIdleConns    int           // Maksimum boşta bekleyen bağlantı sayısı
		ConnMaxLifetime time.Duration // Bağlantı maksimum ömrü
		MaxQPS          float64       // Saniyedeki maksimum sorgu (0 = sınırsız)
		Burst           int           // MaxQPS ani yük kapasitesi
		Debug           bool          // Tüm sorguları debug sink'e bildir
	}

	Redis struct {
		Enabled     bool   // Sorgu logu Redis'e yazılsın mı?
		Host        string // Redis host adresi
		Port        int    // Redis port
		Password    string // Redis şifresi (opsiyonel)
		DB          int    // Database numarası (0-15)
		QueryLogKey string // Sorgu logu liste anahtarı
		QueryLogMax int64  // Listede tutulacak en fazla ifade
	}

	Log struct {
		Level  string // DEBUG, INFO, WARN, ERROR
		Format string // json veya text
	}
}

// Load, .env dosyalarını (verilmezse ".env") yükler ve ortam değişkenlerinden
// Config nesnesini üretir. Bulunamayan .env dosyası hata değildir.
//
// Örnek kullanım:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	db, err := database.Connect(ctx, cfg.Database())
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	env := envReader{logger: slog.Default()}

	// Application Configuration
	cfg.App.Name = env.get("APP_NAME", "querykit")
	cfg.App.Env = env.get("APP_ENV", "development")

	// Database Configuration
	cfg.DB.Driver = env.get("DB_DRIVER", "sqlite")
	cfg.DB.DSN = env.get("DB_DSN", "file:querykit.db?cache=shared")
	cfg.DB.MaxOpenConns = env.getInt("DB_MAX_OPEN_CONNS", 25)
	cfg.DB.MaxIdleConns = env.getInt("DB_MAX_IDLE_CONNS", 25)
	cfg.DB.ConnMaxLifetime = env.getDuration("DB_CONN_MAX_LIFETIME", 300) // 5 dakika
	cfg.DB.MaxQPS = env.getFloat("DB_MAX_QPS", 0)
	cfg.DB.Burst = env.getInt("DB_BURST", 10)
	cfg.DB.Debug = env.getBool("DB_DEBUG", false)

	// Redis Configuration
	cfg.Redis.Enabled = env.getBool("REDIS_ENABLED", false)
	cfg.Redis.Host = env.get("REDIS_HOST", "127.0.0.1")
	cfg.Redis.Port = env.getInt("REDIS_PORT", 6379)
	cfg.Redis.Password = env.getSecret("REDIS_PASSWORD")
	cfg.Redis.DB = env.getInt("REDIS_DB", 0)
	cfg.Redis.QueryLogKey = env.get("QUERY_LOG_KEY", database.DefaultQueryLogKey)
	cfg.Redis.QueryLogMax = int64(env.getInt("QUERY_LOG_MAX", 1000))

	// Log Configuration
	cfg.Log.Level = strings.ToUpper(env.get("LOG_LEVEL", "INFO"))
	cfg.Log.Format = strings.ToLower(env.get("LOG_FORMAT", "text"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate, config değerlerinin geçerliliğini kontrol eder.
func (c *Config) Validate() error {
	if _, err := database.ParseDialect(c.DB.Driver); err != nil {
		return fmt.Errorf("geçersiz DB_DRIVER: %s (mysql, postgres, pgx veya sqlite olmalı)", c.DB.Driver)
	}
	if c.DB.MaxQPS < 0 {
		return fmt.Errorf("DB_MAX_QPS negatif olamaz: %v", c.DB.MaxQPS)
	}

	switch c.Log.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("geçersiz LOG_LEVEL: %s (DEBUG, INFO, WARN veya ERROR olmalı)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("geçersiz LOG_FORMAT: %s (json veya text olmalı)", c.Log.Format)
	}

	if c.IsProduction() && c.DB.Debug {
		slog.Warn("DB_DEBUG production ortamında açık; tüm sorgular loglanacak")
	}
	return nil
}

// Database, bağlantı için database.Config üretir.
func (c *Config) Database() database.Config {
	return database.Config{
		Driver:          c.DB.Driver,
		DSN:             c.DB.DSN,
		MaxOpenConns:    c.DB.MaxOpenConns,
		MaxIdleConns:    c.DB.MaxIdleConns,
		ConnMaxLifetime: c.DB.ConnMaxLifetime,
		MaxQPS:          c.DB.MaxQPS,
		Burst:           c.DB.Burst,
		Debug:           c.DB.Debug,
	}
}

// RedisConfig, Redis bağlantısı için database.RedisConfig üretir.
func (c *Config) RedisConfig() *database.RedisConfig {
	rc := database.DefaultRedisConfig()
	rc.Host = c.Redis.Host
	rc.Port = c.Redis.Port
	rc.Password = c.Redis.Password
	rc.DB = c.Redis.DB
	return rc
}

// IsProduction, uygulamanın production ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment, uygulamanın development ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsTest, uygulamanın test ortamında çalışıp çalışmadığını kontrol eder.
func (c *Config) IsTest() bool {
	return c.App.Env == "test"
}

// -----------------------------------------------------------------------------
// env helpers
// -----------------------------------------------------------------------------

type envReader struct {
	logger *slog.Logger
}

// get, ortam değişkenini okur, yoksa default kullanır.
func (e envReader) get(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	e.logger.Warn("ortam değişkeni bulunamadı, varsayılan kullanılıyor", slog.String("key", key), slog.String("default", defaultValue))
	return defaultValue
}

// getSecret, gizli değerleri okur; varsayılanı loglamaz.
func (e envReader) getSecret(key string) string {
	return os.Getenv(key)
}

func (e envReader) getInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.logger.Warn("geçersiz tam sayı, varsayılan kullanılıyor", slog.String("key", key), slog.String("value", valueStr), slog.Int("default", defaultValue))
		return defaultValue
	}
	return value
}

func (e envReader) getFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		e.logger.Warn("geçersiz sayı, varsayılan kullanılıyor", slog.String("key", key), slog.String("value", valueStr), slog.Float64("default", defaultValue))
		return defaultValue
	}
	return value
}

func (e envReader) getBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.logger.Warn("geçersiz boolean, varsayılan kullanılıyor", slog.String("key", key), slog.String("value", valueStr), slog.Bool("default", defaultValue))
		return defaultValue
	}
	return value
}

// getDuration, saniye cinsinden süre okur.
func (e envReader) getDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(e.getInt(key, defaultSeconds)) * time.Second
}
