package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/idealab/internal/config"
	"github.com/lehigh-university-libraries/idealab/internal/gemini"
	"github.com/lehigh-university-libraries/idealab/internal/images"
	"github.com/lehigh-university-libraries/idealab/internal/ollama"
	"github.com/lehigh-university-libraries/idealab/internal/openai"
	"github.com/lehigh-university-libraries/idealab/internal/providers"
	"github.com/lehigh-university-libraries/idealab/internal/studio"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// newStudioClient wires the image model and the configured description backend
func newStudioClient(ctx context.Context, cfg *config.Config) (*studio.Client, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	imager, err := gemini.New(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	var describer providers.Provider
	switch cfg.DescribeProvider {
	case "openai":
		describer, err = openai.New(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
	case "ollama":
		describer = ollama.New(cfg.OllamaURL)
	default:
		describer = imager
	}

	slog.Debug("Studio client ready",
		"describe_provider", cfg.DescribeProvider,
		"description_model", cfg.Models.Description,
		"image_model", cfg.Models.Image)

	return studio.NewClient(describer, imager, cfg.Models, cfg.Prompts), nil
}

// readImage loads an image from a local path or an http(s) URL
func readImage(ctx context.Context, src string) (images.Asset, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return images.NewFetcher().Fetch(ctx, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return images.Asset{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := images.FromReader(f, images.GuessMIME(src), images.MaxUploadSize)
	if err != nil {
		return images.Asset{}, fmt.Errorf("failed to read %s: %w", src, err)
	}
	return img, nil
}

func writeImage(path string, img images.Asset) error {
	data, err := img.Bytes()
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	slog.Info("Image saved", "filename", path, "mime_type", img.MIMEType, "bytes", len(data))
	return nil
}

// outputPath derives "<name>-<suffix><ext>" next to the source when -o is not given
func outputPath(src, suffix string, img images.Asset) string {
	base := src
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "product"
	}
	return base + "-" + suffix + images.Extension(img.MIMEType)
}
