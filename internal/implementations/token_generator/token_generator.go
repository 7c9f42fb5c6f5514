package tokengenerator

import (
	"strings"
	"tokengate/internal/core/domain/token"

	"github.com/google/uuid"
)

// Generator produces token identifiers from V4 UUIDs. The identifier is
// the only credential for a token, so it must come from a CSPRNG.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) GenerateTokenID() token.ID {
	return token.ID(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
