package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/2DPocket/clickcapture/appstate"
)

// EnvPathVar points at an alternate .env file when no .env sits next to the
// executable.
const EnvPathVar = "CLICKCAPTURE_ENV"

// Config is resolved once at startup. Settings always start from the
// documented defaults; env values only nudge them inside their legal ranges.
// Nothing is written back anywhere.
type Config struct {
	EnableFileLogging bool
	OutputDir         string // empty means auto-discover
	Settings          appstate.Settings
}

func Load() (*Config, error) {
	// Priority order: .env in the executable directory, then a file named
	// by CLICKCAPTURE_ENV, then the plain process environment.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	s := appstate.DefaultSettings()
	if v, ok := intEnv("CAPTURE_SCALE"); ok {
		s.ScalePercent = appstate.ClampScale(v)
	}
	if v, ok := intEnv("JPEG_QUALITY"); ok {
		s.JPEGQuality = appstate.ClampQuality(v)
	}
	if v, ok := intEnv("PDF_MAX_SIZE_MB"); ok {
		s.PDFMaxSizeMB = appstate.ClampPDFMaxSize(v)
	}
	if v, ok := intEnv("AUTO_CLICK_INTERVAL_MS"); ok {
		s.AutoClickIntervalMs = appstate.ClampInterval(v)
	}
	if v, ok := intEnv("AUTO_CLICK_COUNT"); ok && v >= 0 {
		s.AutoClickCount = uint32(v)
	}
	if strings.ToLower(os.Getenv("AUTO_CLICK_ENABLED")) == "true" {
		s.AutoClickEnabled = true
	}

	cfg := &Config{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		OutputDir:         strings.TrimSpace(os.Getenv("OUTPUT_DIR")),
		Settings:          s,
	}
	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}
	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}

func intEnv(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
