// Package imagegen selects and constructs the image generation backend.
package imagegen

import (
	"fmt"

	"github.com/kioskbooth/portraits/internal/config"
	"github.com/kioskbooth/portraits/internal/imagegen/mock"
	"github.com/kioskbooth/portraits/internal/imagegen/runware"
	"github.com/kioskbooth/portraits/pkg/models"
)

// NewGenerator constructs the appropriate image generator based on config.
// Called once at server startup.
func NewGenerator(cfg *config.Config) (models.ImageGenerator, error) {
	switch cfg.Generation.Provider {
	case "runware":
		return runware.NewProvider(cfg.Runware), nil
	case "mock":
		return mock.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q: must be one of runware, mock", cfg.Generation.Provider)
	}
}
