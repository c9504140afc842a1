package receipt

import (
	"time"

	"github.com/zombor/ventas-extractor/internal/extraction"
)

// Extraction is a processed upload kept in the history
type Extraction struct {
	ID string `json:"id"`
	extraction.Result
	CreatedAt time.Time `json:"created_at"`
}
