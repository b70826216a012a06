package procurement

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewDocumentNumber generates a human-facing document number with the given
// prefix, e.g. PO-3FA85F64, IND-0B2C4D6E, GRN-9A1B2C3D
func NewDocumentNumber(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(hex[:8]))
}
