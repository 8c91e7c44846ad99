package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Tree is the nested name→subordinates rendering of an organization.
// It encodes as a JSON object whose keys keep insertion order, e.g.
// {"Jonas":{"Sophie":{}}}.
type Tree []Branch

type Branch struct {
	Name         string
	Subordinates Tree
}

func (t Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t Tree) encode(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, b := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if err := b.Subordinates.encode(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	out, err := decodeTree(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("tree: trailing data")
	}
	*t = out
	return nil
}

func decodeTree(dec *json.Decoder) (Tree, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("tree: expected object, got %v", tok)
	}

	var out Tree
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := keyTok.(string)
		sub, err := decodeTree(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, Branch{Name: name, Subordinates: sub})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
