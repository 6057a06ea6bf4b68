package promo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for reading JSON rule files.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based promo rule loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "promo-loader").Logger(),
	}
}

// Load reads a JSON rule file. The file holds an array of rules:
// [{"code":"SAVE10","kind":"percent","value":0.10}, ...]
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]Rule, error) {
	l.logger.Info().Str("file", filePath).Msg("loading promo rule file")

	data, err := os.ReadFile(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read promo rule file")
		return nil, fmt.Errorf("failed to read promo rule file %s: %w", filePath, err)
	}

	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to parse promo rule file")
		return nil, fmt.Errorf("failed to parse promo rule file %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("rules_loaded", len(rules)).
		Msg("promo rule file loaded successfully")

	return rules, nil
}
