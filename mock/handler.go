// Package mock provides test doubles for the handler pipeline.
package mock

import "github.com/pilosa/wdmigrate"

// RecordingHandler captures every delivery for later inspection. Row
// buffers are not retained (they are reused by the runner); the fields
// tests care about are copied out instead. Not threadsafe.
type RecordingHandler struct {
	Values    []wdmigrate.Value
	ClaimIDs  []string
	Summaries int

	// HandleErr, if set, is returned from every Handle call.
	HandleErr error
}

// Handle implements wdmigrate.Handler.
func (h *RecordingHandler) Handle(cols *wdmigrate.Columns, v wdmigrate.Value) error {
	if h.HandleErr != nil {
		return h.HandleErr
	}
	h.Values = append(h.Values, v)
	h.ClaimIDs = append(h.ClaimIDs, cols.ClaimID)
	return nil
}

// Summary implements wdmigrate.Handler.
func (h *RecordingHandler) Summary() error {
	h.Summaries++
	return nil
}
