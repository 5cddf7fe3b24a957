package ledger

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator mints payment ids. Implementations must not repeat ids.
type IDGenerator interface {
	NewID() string
}

// IDGeneratorFunc adapts a function to IDGenerator.
type IDGeneratorFunc func() string

func (f IDGeneratorFunc) NewID() string { return f() }

// UUIDGenerator mints random (v4) UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// DeriveCompanionID uppercases name and joins its whitespace separated words
// with "_": " Ana Maria " becomes "ANA_MARIA".
func DeriveCompanionID(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), "_")
}
