package ui

import (
	"encoding/json"
	"io"

	"aispend/internal/domain"
)

// WriteJSON writes the structured report for machine consumption.
func WriteJSON(w io.Writer, report domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
