package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDescriptionModel = "gemini-2.5-flash"
	DefaultImageModel       = "gemini-2.5-flash-image-preview"
	DefaultPort             = "8888"

	DefaultDescriptionPrompt = "Describe the product shown in the image in a concise paragraph, focusing on its key visual features and potential materials."
	DefaultSketchPrompt      = "Generate a clean, black and white technical line drawing of this product. The sketch should be suitable for a manufacturing specification sheet. Focus on clear outlines, form, and key details. Remove all color, shading, and background elements. The output should be a single, clear product sketch."
)

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable not set")

// Config holds everything the studio needs at startup
type Config struct {
	GeminiAPIKey string `yaml:"-"`
	OpenAIAPIKey string `yaml:"-"`

	Port           string `yaml:"port"`
	GoogleClientID string `yaml:"google_client_id"`
	SecureCookies  bool   `yaml:"secure_cookies"`

	// DescribeProvider selects the backend for product descriptions:
	// gemini, openai or ollama. Image operations always use gemini.
	DescribeProvider string `yaml:"describe_provider"`
	OllamaURL        string `yaml:"ollama_url"`

	Models  Models  `yaml:"models"`
	Prompts Prompts `yaml:"prompts"`
}

type Models struct {
	Description string `yaml:"description"`
	Image       string `yaml:"image"`

	// Temperature is sent with every request when set; nil leaves the model default
	Temperature *float32 `yaml:"temperature"`
}

type Prompts struct {
	Description string `yaml:"description"`
	Sketch      string `yaml:"sketch"`
}

// Default returns the configuration used when no file or environment overrides exist
func Default() *Config {
	return &Config{
		Port:             DefaultPort,
		DescribeProvider: "gemini",
		Models: Models{
			Description: DefaultDescriptionModel,
			Image:       DefaultImageModel,
		},
		Prompts: Prompts{
			Description: DefaultDescriptionPrompt,
			Sketch:      DefaultSketchPrompt,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireAPIKey fails when the remote generation credential is absent
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func (c *Config) applyEnv() error {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.GeminiAPIKey, "GEMINI_API_KEY")
	set(&c.OpenAIAPIKey, "OPENAI_API_KEY")
	set(&c.Port, "PORT")
	set(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	set(&c.DescribeProvider, "IDEALAB_DESCRIBE_PROVIDER")
	set(&c.OllamaURL, "OLLAMA_URL", "OLLAMA_HOST")
	set(&c.Models.Image, "IDEALAB_IMAGE_MODEL")

	switch c.DescribeProvider {
	case "openai":
		set(&c.Models.Description, "IDEALAB_DESCRIPTION_MODEL", "OPENAI_MODEL")
	case "ollama":
		set(&c.Models.Description, "IDEALAB_DESCRIPTION_MODEL", "OLLAMA_MODEL")
	default:
		set(&c.Models.Description, "IDEALAB_DESCRIPTION_MODEL")
	}

	if v := strings.TrimSpace(os.Getenv("IDEALAB_TEMPERATURE")); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("failed to parse IDEALAB_TEMPERATURE: %w", err)
		}
		temp := float32(t)
		c.Models.Temperature = &temp
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.DescribeProvider == "" {
		c.DescribeProvider = "gemini"
	}
	if c.Models.Image == "" {
		c.Models.Image = DefaultImageModel
	}
	if c.Models.Description == "" || (c.DescribeProvider != "gemini" && c.Models.Description == DefaultDescriptionModel) {
		c.Models.Description = defaultDescriptionModel(c.DescribeProvider)
	}
	if c.Prompts.Description == "" {
		c.Prompts.Description = DefaultDescriptionPrompt
	}
	if c.Prompts.Sketch == "" {
		c.Prompts.Sketch = DefaultSketchPrompt
	}
}

func (c *Config) validate() error {
	if t := c.Models.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", *t)
	}
	switch c.DescribeProvider {
	case "gemini", "openai", "ollama":
		return nil
	default:
		return fmt.Errorf("unsupported describe provider: %s", c.DescribeProvider)
	}
}

func defaultDescriptionModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return DefaultDescriptionModel
	}
}
