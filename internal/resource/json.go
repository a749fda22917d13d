package resource

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// JSONFormat stores entries as a (possibly nested) JSON object. Nested
// objects are flattened into dotted keys; comments are not supported.
type JSONFormat struct{}

func (JSONFormat) Name() string         { return "json" }
func (JSONFormat) Extensions() []string { return []string{".json"} }

// Read walks the token stream instead of unmarshalling into a map so that
// key order and repeated keys survive.
func (JSONFormat) Read(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("failed to decode json: top-level value must be an object")
	}

	entries := []Entry{}
	if err := readJSONObject(dec, "", &entries); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return entries, nil
}

func readJSONObject(dec *json.Decoder, prefix string, entries *[]Entry) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		full := joinKey(prefix, key)

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				if err := readJSONObject(dec, full, entries); err != nil {
					return err
				}
			case '[':
				value, err := readJSONArray(dec)
				if err != nil {
					return err
				}
				*entries = append(*entries, Entry{Key: full, Value: value})
			}
		case nil:
			*entries = append(*entries, Entry{Key: full})
		default:
			*entries = append(*entries, Entry{Key: full, Value: fmt.Sprint(v)})
		}
	}
	_, err := dec.Token() // closing '}'
	return err
}

// readJSONArray joins scalar array items with newlines.
func readJSONArray(dec *json.Decoder) (string, error) {
	var items []string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch v := tok.(type) {
		case json.Delim:
			if v == '[' || v == '{' {
				depth++
			} else {
				depth--
			}
		case nil:
		default:
			if depth == 1 {
				items = append(items, fmt.Sprint(v))
			}
		}
	}
	return strings.Join(items, "\n"), nil
}

func (JSONFormat) Write(w io.Writer, entries []Entry) error {
	var buf bytes.Buffer
	writeJSONNode(&buf, buildTree(entries), 0)
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func writeJSONNode(buf *bytes.Buffer, node *keyNode, depth int) {
	if len(node.children) == 0 {
		buf.WriteString("{}")
		return
	}
	indent := strings.Repeat("  ", depth+1)
	buf.WriteString("{\n")
	for i, c := range node.children {
		buf.WriteString(indent)
		buf.WriteString(jsonString(c.name))
		buf.WriteString(": ")
		if c.leaf {
			buf.WriteString(jsonString(c.entry.Value))
		} else {
			writeJSONNode(buf, c, depth+1)
		}
		if i < len(node.children)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(strings.Repeat("  ", depth))
	buf.WriteByte('}')
}

func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
