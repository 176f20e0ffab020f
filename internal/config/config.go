// Package config reads environment-driven settings for the two
// programs (optionally from a .env file).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/oceanobs/floatchat/internal/argo"
)

const (
	defaultFTPHost     = "ftp.ifremer.fr"
	defaultFTPBaseDir  = "/ifremer/argo"
	defaultDownloadDir = "argo_data_downloads"
	defaultCSVPath     = "argo_processed.csv"
	defaultModel       = "gemini-1.5-flash"
	defaultPort        = 8080

	dateLayout = "2006-01-02"
)

// Default selection bounds: the Indian Ocean equatorial band,
// March 2023.
var (
	defaultRegion = argo.Region{LatMin: -5, LatMax: 5, LonMin: 60, LonMax: 80}
	defaultWindow = argo.TimeWindow{
		Start: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
)

// IngestConfig holds settings for one ETL run.
type IngestConfig struct {
	DatabaseURL string // may stay empty for dry runs
	FTPHost     string
	FTPBaseDir  string
	DownloadDir string
	CSVPath     string
	Region      argo.Region
	Window      argo.TimeWindow
}

// LoadIngest reads the ETL configuration from environment variables.
func LoadIngest() (IngestConfig, error) {
	_ = godotenv.Load()

	cfg := IngestConfig{
		FTPHost:     defaultFTPHost,
		FTPBaseDir:  defaultFTPBaseDir,
		DownloadDir: defaultDownloadDir,
		CSVPath:     defaultCSVPath,
		Region:      defaultRegion,
		Window:      defaultWindow,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("FTP_HOST")); v != "" {
		cfg.FTPHost = v
	}
	if v := strings.TrimSpace(os.Getenv("FTP_BASE_DIR")); v != "" {
		cfg.FTPBaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DOWNLOAD_DIR")); v != "" {
		cfg.DownloadDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CSV_PATH")); v != "" {
		cfg.CSVPath = v
	}

	var err error
	if cfg.Region.LatMin, err = floatEnv("LAT_MIN", cfg.Region.LatMin); err != nil {
		return cfg, err
	}
	if cfg.Region.LatMax, err = floatEnv("LAT_MAX", cfg.Region.LatMax); err != nil {
		return cfg, err
	}
	if cfg.Region.LonMin, err = floatEnv("LON_MIN", cfg.Region.LonMin); err != nil {
		return cfg, err
	}
	if cfg.Region.LonMax, err = floatEnv("LON_MAX", cfg.Region.LonMax); err != nil {
		return cfg, err
	}
	if cfg.Window.Start, err = dateEnv("START_DATE", cfg.Window.Start); err != nil {
		return cfg, err
	}
	if cfg.Window.End, err = dateEnv("END_DATE", cfg.Window.End); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ChatConfig holds settings for the question-answering service.
type ChatConfig struct {
	DatabaseURL  string
	GoogleAPIKey string
	Model        string
	Port         int
}

// LoadChat reads the chat service configuration from environment
// variables. DATABASE_URL wins; otherwise the URL is composed from
// DB_USERNAME/DB_PASSWORD/DB_HOST/DB_NAME.
func LoadChat() (ChatConfig, error) {
	_ = godotenv.Load()

	cfg := ChatConfig{
		Model: defaultModel,
		Port:  defaultPort,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		user := strings.TrimSpace(os.Getenv("DB_USERNAME"))
		pass := os.Getenv("DB_PASSWORD")
		host := strings.TrimSpace(os.Getenv("DB_HOST"))
		name := strings.TrimSpace(os.Getenv("DB_NAME"))
		if user == "" || host == "" || name == "" {
			return cfg, errors.New("DATABASE_URL (or DB_USERNAME/DB_HOST/DB_NAME) is required")
		}
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s/%s",
			url.QueryEscape(user), url.QueryEscape(pass), host, name)
	}

	cfg.GoogleAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if cfg.GoogleAPIKey == "" {
		return cfg, errors.New("GOOGLE_API_KEY is required")
	}

	if v := strings.TrimSpace(os.Getenv("CHAT_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid PORT: %s", v)
		}
		cfg.Port = port
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c ChatConfig) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func floatEnv(name string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", name, err)
	}
	return f, nil
}

func dateEnv(name string, def time.Time) (time.Time, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}
