package output

import (
	"encoding/json"

	"github.com/finsim/retirement-simulator/internal/domain"
)

// JSONFormatter serializes the result as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string      { return "json" }
func (j JSONFormatter) Extension() string { return "json" }

func (j JSONFormatter) Format(res *domain.SimulationResult) ([]byte, error) {
	return json.MarshalIndent(res, "", "  ")
}
