// Package claims loads and validates the claim specification file.
package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/ppiankov/claimoverlap/internal/model"
)

var (
	// ErrInvalidProperty is returned for keys that are not Wikidata property IDs
	ErrInvalidProperty = errors.New("invalid property identifier")

	// ErrInvalidName is returned for names that cannot be used as query variables
	ErrInvalidName = errors.New("invalid claim name")

	// ErrDuplicateName is returned when two properties share a claim name
	ErrDuplicateName = errors.New("duplicate claim name")
)

var (
	propertyPattern = regexp.MustCompile(`^P[1-9][0-9]*$`)
	namePattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// reserved variables are bound by the base query itself
var reserved = map[string]bool{
	"item":  true,
	"rorID": true,
}

// LoadFile reads a claim specification from a JSON file
func LoadFile(path string) (model.ClaimSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read claims file: %w", err)
	}
	defer func() { _ = f.Close() }()

	spec, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse claims file %s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes a flat JSON object of property -> name, keeping key order
func Parse(r io.Reader) (model.ClaimSpec, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	spec := model.ClaimSpec{}
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
		key, _ := keyTok.(string)

		var name string
		if err := dec.Decode(&name); err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}

		// repeated keys keep their first position and take the last value
		if i, ok := index[key]; ok {
			spec[i].Name = name
			continue
		}
		index[key] = len(spec)
		spec = append(spec, model.Claim{Property: key, Name: name})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}

	if err := Validate(spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// Validate checks that every claim can be safely interpolated into a query
// and used as an output file name.
func Validate(spec model.ClaimSpec) error {
	seen := make(map[string]string, len(spec))
	for _, c := range spec {
		if !propertyPattern.MatchString(c.Property) {
			return fmt.Errorf("%w: %q", ErrInvalidProperty, c.Property)
		}
		if !namePattern.MatchString(c.Name) || reserved[c.Name] {
			return fmt.Errorf("%w: %q (property %s)", ErrInvalidName, c.Name, c.Property)
		}
		if prev, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateName, c.Name, prev, c.Property)
		}
		seen[c.Name] = c.Property
	}
	return nil
}
