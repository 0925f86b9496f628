package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/stockbrief/stockbrief/internal/models"
)

// ParseReport attempts a strict JSON parse of the extracted candidate text.
// On success it returns both the typed report (for the renderer) and the raw
// mapping (echoed to the caller as raw_json). On failure it returns
// ErrMalformedResponse; the caller switches to the fallback text path. No
// partial or lenient repair is attempted beyond the fence stripping already
// done by ExtractJSON: broken JSON degrades wholesale rather than being
// guessed at.
func ParseReport(candidate string) (*models.StockReport, map[string]interface{}, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var report models.StockReport
	if err := json.Unmarshal([]byte(candidate), &report); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return &report, raw, nil
}
