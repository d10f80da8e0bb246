package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"mrrdash/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[UI] Failed to encode response: %v", err)
	}
}

// writeError maps application error codes onto HTTP statuses and surfaces
// the human-readable message to the caller.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeMissingGroupingColumn, errors.CodeNoMonthColumns, errors.CodeNoCustomerColumn:
		status = http.StatusUnprocessableEntity
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  code,
	})
}

// parseTopN parses a comma-separated list of cohort sizes, e.g. "5,10,15".
// An empty value returns nil so the analysis falls back to its defaults.
func parseTopN(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var result []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return nil, errors.InvalidInput("top must be a comma-separated list of positive integers")
		}
		result = append(result, n)
	}
	return result, nil
}
