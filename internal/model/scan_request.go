package model

import "encoding/json"

// ScanRequest is the body of POST /scan, both on the scan service and on the
// front end's JSON API.
type ScanRequest struct {
	URL string `json:"url" form:"url"`
}

// ErrorResponse is the failure body returned by the scan service. Detail is
// either a string or, for request validation failures, a list of
// ValidationIssue objects.
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

type ValidationIssue struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// HistoryResponse is the body of GET /history.
type HistoryResponse struct {
	History []ScanResult `json:"history"`
}
