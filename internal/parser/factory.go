// internal/parser/factory.go
package parser

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aferrand/valet/api/schemas"
	"github.com/aferrand/valet/internal/config"
)

// New selects an IntentParser implementation from the configuration.
func New(cfg config.ParserConfig, logger *zap.Logger) (schemas.IntentParser, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGemini(cfg, logger)
	case config.ProviderStatic:
		return NewStatic(logger), nil
	default:
		return nil, fmt.Errorf("unsupported parser provider: %q", cfg.Provider)
	}
}
