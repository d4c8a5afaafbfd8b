package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	EnvFileEnvVar     = "ODINS_EYE_ENV"

	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

type LoadOptions struct {
	APIKeyPathOverride string
	EngineOverride     string
}

type Config struct {
	Engine            string
	Languages         []string
	TessdataPrefix    string
	Preprocess        bool
	OCRDeadlineSec    int
	APIKey            string
	APIKeyPath        string
	Model             string
	LLMBaseURL        string
	Hotkey            string
	CaptureDisplay    int
	CapturePick       bool
	MinSelectionPx    int
	MessageClearSec   int
	OverlayOutline    string
	OverlayMask       string
	OverlayMaskAlpha  float64
	EnableFileLogging bool
	LogLevel          string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, the file named by ODINS_EYE_ENV
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)

	cfg := &Config{
		Engine:            resolveEngineValue(opts),
		Languages:         splitList(getEnvWithDefault("OCR_LANGUAGE", "eng"), "+"),
		TessdataPrefix:    strings.TrimSpace(os.Getenv("TESSDATA_PREFIX")),
		Preprocess:        envBool("OCR_PREPROCESS"),
		OCRDeadlineSec:    envPositiveInt("OCR_DEADLINE_SEC", 20),
		APIKey:            resolveAPIKey(apiKeyPath),
		APIKeyPath:        apiKeyPath,
		Model:             os.Getenv("MODEL"),
		LLMBaseURL:        os.Getenv("LLM_BASE_URL"),
		Hotkey:            getEnvWithDefault("HOTKEY", "Ctrl+Alt+Q"),
		CaptureDisplay:    envInt("CAPTURE_DISPLAY", -1),
		CapturePick:       envBool("CAPTURE_PICK"),
		MinSelectionPx:    envPositiveInt("MIN_SELECTION_PX", 10),
		MessageClearSec:   envPositiveInt("MESSAGE_CLEAR_SEC", 3),
		OverlayOutline:    getEnvWithDefault("OVERLAY_OUTLINE", "#c9a227"),
		OverlayMask:       getEnvWithDefault("OVERLAY_MASK", "#000000"),
		OverlayMaskAlpha:  envFloat("OVERLAY_MASK_ALPHA", 0.35),
		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		LogLevel:          strings.ToLower(getEnvWithDefault("LOG_LEVEL", "info")),
	}

	return cfg, nil
}

// Validate checks the settings the chosen engine depends on.
func (c *Config) Validate() error {
	if c.Engine != EngineVision {
		return nil
	}
	if c.APIKey == "" {
		return errors.New("OPENROUTER_API_KEY is required for the vision engine. Checked key file " + c.APIKeyPath + " and OPENROUTER_API_KEY env var")
	}
	if c.Model == "" {
		return errors.New("MODEL is required for the vision engine. Please set it in your .env file")
	}
	return nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvFileEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func resolveEngine(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case EngineVision, "llm":
		return EngineVision
	default:
		return EngineTesseract
	}
}

func resolveEngineValue(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.EngineOverride); override != "" {
		return resolveEngine(override)
	}
	return resolveEngine(os.Getenv("OCR_ENGINE"))
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && v
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return def
}

func envPositiveInt(key string, def int) int {
	if n := envInt(key, def); n > 0 {
		return n
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return f
	}
	return def
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
