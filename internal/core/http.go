package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 64 << 10

// DecodeJSON decodes a JSON request body, rejecting unknown fields and
// trailing data. Failures are returned as validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return NewValidationError("Invalid request body", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return NewValidationError("Invalid request body", fmt.Errorf("unexpected trailing data"))
	}
	return nil
}

// ClientGone reports whether the request was abandoned while it was being
// served. Handlers check it after slow reads and drop the stale result.
func ClientGone(r *http.Request) bool {
	return r.Context().Err() != nil
}

// QueryInt reads a positive integer query parameter, returning def when it
// is absent or malformed
func QueryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
