package service

import (
	"fmt"
	"net/http"
)

// Error is a request-level failure with a stable machine-readable code.
type Error struct {
	Status int    `json:"-"`
	Code   string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return e.Code
}

func badRequest(code string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code}
}

// Request error codes.
var (
	ErrMissingAction       = badRequest("missing_action")
	ErrUnknownAction       = badRequest("unknown_action")
	ErrMissingRiotID       = badRequest("missing_riot_id")
	ErrMissingRiotIDOrUUID = badRequest("missing_riot_id_or_puuid")
	ErrMissingLineup       = badRequest("missing_lineup")
	ErrNoMatches           = &Error{Status: http.StatusNotFound, Code: "no_matches"}
	ErrNotInMatch          = &Error{Status: http.StatusNotFound, Code: "participant_not_in_match"}
	ErrIndexUnavailable    = &Error{Status: http.StatusServiceUnavailable, Code: "lineup_index_unavailable"}
)
