package status

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/types"
)

// FetchStatus performs one status poll. Any failure is a *types.StatusFetchError or *types.MalformedResponse.
func FetchStatus(ctx context.Context, client *http.Client, url string) (types.StatusSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.StatusSnapshot{}, &types.StatusFetchError{Message: fmt.Sprintf("failed to create status request: %v", err), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return types.StatusSnapshot{}, &types.StatusFetchError{Message: err.Error(), Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.StatusSnapshot{}, &types.StatusFetchError{StatusCode: resp.StatusCode, Message: err.Error(), Err: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return types.StatusSnapshot{}, &types.StatusFetchError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return ParseSnapshot(body)
}

// errorMessage returns the body's "error" field, or "" so the caller falls back to "Unknown error".
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// ParseSnapshot decodes a status body. "status" may be a plain string or an object with "value";
// numeric fields at either level become counters.
func ParseSnapshot(body []byte) (types.StatusSnapshot, error) {
	var top map[string]json.RawMessage
	if err := sonic.Unmarshal(body, &top); err != nil {
		return types.StatusSnapshot{}, &types.MalformedResponse{What: "status snapshot", Err: err}
	}
	snap := types.StatusSnapshot{Counters: map[string]int64{}}

	raw := bytes.TrimSpace(top["status"])
	switch {
	case len(raw) == 0 || string(raw) == "null":
	case raw[0] == '"':
		var s string
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return types.StatusSnapshot{}, &types.MalformedResponse{What: "status field", Err: err}
		}
		snap.RawStatus = s
	case raw[0] == '{':
		var inner map[string]json.RawMessage
		if err := sonic.Unmarshal(raw, &inner); err != nil {
			return types.StatusSnapshot{}, &types.MalformedResponse{What: "status object", Err: err}
		}
		if v := bytes.TrimSpace(inner["value"]); len(v) > 0 && string(v) != "null" {
			if err := sonic.Unmarshal(v, &snap.RawStatus); err != nil {
				return types.StatusSnapshot{}, &types.MalformedResponse{What: "status value", Err: err}
			}
		}
		delete(inner, "value")
		if err := collectFields(inner, &snap); err != nil {
			return types.StatusSnapshot{}, err
		}
	default:
		return types.StatusSnapshot{}, &types.MalformedResponse{What: "status field", Err: fmt.Errorf("unexpected value %s", raw)}
	}
	delete(top, "status")
	if err := collectFields(top, &snap); err != nil {
		return types.StatusSnapshot{}, err
	}
	snap.Status = ParseJobStatus(snap.RawStatus)
	return snap, nil
}

// collectFields reads keys in sorted order so merged lists ("discardReasons" then "discards") are stable.
func collectFields(fields map[string]json.RawMessage, snap *types.StatusSnapshot) error {
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		raw := bytes.TrimSpace(fields[key])
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		switch key {
		case "errors":
			var msgs []string
			if err := sonic.Unmarshal(raw, &msgs); err != nil {
				return &types.MalformedResponse{What: "errors list", Err: err}
			}
			snap.Errors = append(snap.Errors, msgs...)
		case "discardReasons", "discards":
			var records []types.DiscardRecord
			if err := sonic.Unmarshal(raw, &records); err != nil {
				return &types.MalformedResponse{What: "discard records", Err: err}
			}
			snap.Discards = append(snap.Discards, records...)
		default:
			if n, ok := parseCounter(raw); ok {
				snap.Counters[key] = n
			}
		}
	}
	return nil
}

func parseCounter(raw json.RawMessage) (int64, bool) {
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var n int64
	if err := sonic.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var f float64
	if err := sonic.Unmarshal(raw, &f); err == nil {
		return int64(f), true
	}
	return 0, false
}

// ParseJobStatus maps the wire value; unrecognized non-empty values count as still running.
func ParseJobStatus(raw string) types.JobStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return types.JobStatusNone
	case "done":
		return types.JobStatusDone
	case "error", "failed":
		return types.JobStatusError
	default:
		return types.JobStatusRunning
	}
}

// UnavailableMessage is the text shown for a failed poll.
func UnavailableMessage(err error) string {
	if err == nil {
		return ""
	}
	var fetchErr *types.StatusFetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return types.UnknownErrorMessage
}
