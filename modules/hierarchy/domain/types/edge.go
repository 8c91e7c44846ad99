package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Edge is one subordinate→supervisor input pair.
type Edge struct {
	Subordinate string
	Supervisor  string
}

func (e Edge) Entry() string {
	return e.Subordinate + ":" + e.Supervisor
}

// Edges is an ordered edge list decoded from a JSON object of
// subordinate→supervisor strings. Document order is kept.
type Edges []Edge

var (
	ErrEdgesNotObject  = errors.New("hierarchy must be a json object of subordinate to supervisor names")
	ErrEdgeValueString = errors.New("supervisor names must be strings")
	ErrEdgeEmptyName   = errors.New("employee names must not be empty")
	ErrEdgeNULName     = errors.New("employee names must not contain NUL characters")
)

func (es *Edges) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrEdgesNotObject
	}

	var out Edges
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		sub, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var sup string
		if err := json.Unmarshal(raw, &sup); err != nil {
			return fmt.Errorf("%w: %q", ErrEdgeValueString, sub)
		}
		if strings.TrimSpace(sub) == "" || strings.TrimSpace(sup) == "" {
			return ErrEdgeEmptyName
		}
		if strings.ContainsRune(sub, 0) || strings.ContainsRune(sup, 0) {
			return fmt.Errorf("%w: %q", ErrEdgeNULName, sub)
		}
		out = append(out, Edge{Subordinate: sub, Supervisor: sup})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("hierarchy: trailing data")
	}
	*es = out
	return nil
}
