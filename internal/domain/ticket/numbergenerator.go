package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/frankincense-labs/cx-management/internal/shared/id"
)

// NumberGenerator assigns human-readable ticket numbers.
type NumberGenerator interface {
	Generate(ctx context.Context) (string, error)
}

const numberSuffixLength = 5

// DefaultNumberGenerator produces TKT-<unix millis>-<5 uppercase base36>.
type DefaultNumberGenerator struct {
	now func() time.Time
}

func NewDefaultNumberGenerator() *DefaultNumberGenerator {
	return &DefaultNumberGenerator{now: time.Now}
}

func (g *DefaultNumberGenerator) Generate(ctx context.Context) (string, error) {
	suffix, err := id.GenerateFrom(id.Base36Upper, numberSuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate ticket number: %w", err)
	}
	return fmt.Sprintf("TKT-%d-%s", g.now().UnixMilli(), suffix), nil
}
