package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Web    WebConfig    `yaml:"web"`
	Upload UploadConfig `yaml:"upload"`
	Report ReportConfig `yaml:"report"`
	PDF    PDFConfig    `yaml:"pdf"`
}

type WebConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	SessionSecret  string        `yaml:"-"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	AllowedOrigins []string      `yaml:"-"` // extra CORS origins, localhost is always allowed
}

type UploadConfig struct {
	MaxRequestBytes   int64 `yaml:"max_request_bytes"`
	MaxPhotoBytes     int64 `yaml:"max_photo_bytes"`
	DecodeConcurrency int   `yaml:"decode_concurrency"`
}

// ReportConfig holds the static parts of the printed report.
type ReportConfig struct {
	DefaultTitle string `yaml:"default_title"` // printed when the report has no title
	Organization string `yaml:"organization"`  // printed in the footer
	LogoURL      string `yaml:"logo_url"`      // printed in the header, HTML only
}

type PDFConfig struct {
	Binary  string `yaml:"binary"`
	Columns int    `yaml:"columns"`
	Rows    int    `yaml:"rows"`
}

// PhotosPerPage returns the number of grid cells on a PDF page.
func (c *PDFConfig) PhotosPerPage() int {
	return c.Columns * c.Rows
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envInt64(key string, defaultVal int64) int64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s, ok := os.LookupEnv(key); ok {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated environment variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Defaults returns the embedded defaults without looking at the environment.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

func Load() *Config {
	d := Defaults()

	return &Config{
		Web: WebConfig{
			Host:           envString("WEB_HOST", d.Web.Host),
			Port:           envInt("WEB_PORT", d.Web.Port),
			SessionSecret:  os.Getenv("WEB_SESSION_SECRET"),
			SessionTTL:     envDuration("WEB_SESSION_TTL", d.Web.SessionTTL),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Upload: UploadConfig{
			MaxRequestBytes:   envInt64("UPLOAD_MAX_REQUEST_BYTES", d.Upload.MaxRequestBytes),
			MaxPhotoBytes:     envInt64("UPLOAD_MAX_PHOTO_BYTES", d.Upload.MaxPhotoBytes),
			DecodeConcurrency: envInt("UPLOAD_DECODE_CONCURRENCY", d.Upload.DecodeConcurrency),
		},
		Report: ReportConfig{
			DefaultTitle: envString("REPORT_DEFAULT_TITLE", d.Report.DefaultTitle),
			Organization: envString("REPORT_ORGANIZATION", d.Report.Organization),
			LogoURL:      envString("REPORT_LOGO_URL", d.Report.LogoURL),
		},
		PDF: PDFConfig{
			Binary:  envString("PDF_LATEX_BINARY", d.PDF.Binary),
			Columns: envInt("PDF_COLUMNS", d.PDF.Columns),
			Rows:    envInt("PDF_ROWS", d.PDF.Rows),
		},
	}
}
