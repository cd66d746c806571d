package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration for preview, export and app behavior.
// Fields are loaded from a JSON file and may be overridden by VIDCROP_*
// environment variables (optionally read from a .env file).
type Config struct {
	Debug    bool   `json:"debug" env:"VIDCROP_DEBUG"`
	LogLevel string `json:"log_level" env:"VIDCROP_LOG_LEVEL"`
	LogFile  string `json:"log_file" env:"VIDCROP_LOG_FILE"`

	// Video backend
	FFmpegPath  string `json:"ffmpeg_path" env:"VIDCROP_FFMPEG_PATH"`
	FFprobePath string `json:"ffprobe_path" env:"VIDCROP_FFPROBE_PATH"`

	// Export parameters
	OutputExt        string `json:"output_ext" env:"VIDCROP_OUTPUT_EXT"`
	VideoCodec       string `json:"video_codec" env:"VIDCROP_VIDEO_CODEC"`
	CRF              int    `json:"crf" env:"VIDCROP_CRF"`
	Preset           string `json:"preset" env:"VIDCROP_PRESET"`
	ProgressInterval int    `json:"progress_interval" env:"VIDCROP_PROGRESS_INTERVAL"`

	DarkMode bool `json:"dark_mode" env:"VIDCROP_DARK_MODE"`

	// Window and fallback viewport used before Tk has laid the canvas out.
	WindowWidth    int `json:"window_width" env:"VIDCROP_WINDOW_WIDTH"`
	WindowHeight   int `json:"window_height" env:"VIDCROP_WINDOW_HEIGHT"`
	ViewportWidth  int `json:"viewport_width" env:"VIDCROP_VIEWPORT_WIDTH"`
	ViewportHeight int `json:"viewport_height" env:"VIDCROP_VIEWPORT_HEIGHT"`

	// Last opened video, restored on the next start.
	LastVideo string `json:"last_video"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:            false,
		LogLevel:         "info",
		LogFile:          "",
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		OutputExt:        ".mp4",
		VideoCodec:       "libx264",
		CRF:              18,
		Preset:           "medium",
		ProgressInterval: 10,
		WindowWidth:      1000,
		WindowHeight:     700,
		ViewportWidth:    800,
		ViewportHeight:   450,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = "info"
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if strings.TrimSpace(c.FFprobePath) == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.OutputExt == "" {
		c.OutputExt = ".mp4"
	}
	if !strings.HasPrefix(c.OutputExt, ".") {
		c.OutputExt = "." + c.OutputExt
	}
	if c.VideoCodec == "" {
		c.VideoCodec = "libx264"
	}
	if c.CRF < 0 || c.CRF > 51 {
		c.CRF = 18
	}
	if c.Preset == "" {
		c.Preset = "medium"
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = 10
	}
	if c.WindowWidth < 320 {
		c.WindowWidth = 1000
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = 700
	}
	if c.ViewportWidth < 10 {
		c.ViewportWidth = 800
	}
	if c.ViewportHeight < 10 {
		c.ViewportHeight = 450
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
// Environment overrides are applied after the file in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.ApplyEnv(); err != nil {
				return cfg, err
			}
			_ = cfg.Validate()
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// ApplyEnv loads the first .env file found (working directory, then the
// executable's directory) and overlays VIDCROP_* variables onto c.
func (c *Config) ApplyEnv() error {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
	return env.Parse(c)
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// DefaultPath returns the per-user config file location, falling back to
// the working directory when no config dir is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "vidcrop.json"
	}
	return filepath.Join(dir, "vidcrop", "config.json")
}
