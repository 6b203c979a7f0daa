package sparql

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/claimoverlap/internal/model"
)

// Response is the subset of the SPARQL 1.1 JSON results format used here
type Response struct {
	Results *Results `json:"results"`
}

// Results holds the solution rows
type Results struct {
	Bindings []model.Binding `json:"bindings"`
}

// DecodeBindings reads a SPARQL JSON response and returns its result rows
func DecodeBindings(r io.Reader) ([]model.Binding, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if resp.Results == nil {
		return nil, fmt.Errorf("decode results: missing results object")
	}
	return resp.Results.Bindings, nil
}
