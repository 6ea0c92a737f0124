package main

import (
	"encoding/json"
	"io"

	"github.com/hamed0406/uptimereport/internal/domain"
)

func writeJSON(w io.Writer, reps []domain.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reps)
}
