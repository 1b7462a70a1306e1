package actionlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const indentUnit = "  "

// FormatPayload pretty-prints a JSON payload with two-space indentation,
// keeping key order, number literals and non-ASCII text as they are.
// Input that is not exactly one JSON value is returned unchanged.
func FormatPayload(raw string) string {
	// the decoder would replace invalid UTF-8 with U+FFFD
	if !json.Valid([]byte(raw)) || !utf8.ValidString(raw) {
		return raw
	}
	out, err := reindent(raw)
	if err != nil {
		return raw
	}
	return out
}

func reindent(raw string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var b strings.Builder
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	if err := writeValue(dec, tok, &b, 0); err != nil {
		return "", err
	}
	if _, err := dec.Token(); err == nil {
		return "", errors.New("trailing data after JSON value")
	}
	return b.String(), nil
}

func writeValue(dec *json.Decoder, tok json.Token, b *strings.Builder, depth int) error {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return writeContainer(dec, b, depth, '}', true)
		case '[':
			return writeContainer(dec, b, depth, ']', false)
		}
		return fmt.Errorf("unexpected delimiter %q", rune(v))
	case string:
		return writeString(b, v)
	case json.Number:
		b.WriteString(v.String())
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case nil:
		b.WriteString("null")
	default:
		return fmt.Errorf("unexpected token %T", tok)
	}
	return nil
}

func writeContainer(dec *json.Decoder, b *strings.Builder, depth int, closer json.Delim, object bool) error {
	if object {
		b.WriteByte('{')
	} else {
		b.WriteByte('[')
	}
	n := 0
	for dec.More() {
		if n > 0 {
			b.WriteByte(',')
		}
		newline(b, depth+1)
		if object {
			key, err := dec.Token()
			if err != nil {
				return err
			}
			ks, ok := key.(string)
			if !ok {
				return fmt.Errorf("object key %T", key)
			}
			if err := writeString(b, ks); err != nil {
				return err
			}
			b.WriteString(": ")
		}
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if err := writeValue(dec, tok, b, depth+1); err != nil {
			return err
		}
		n++
	}
	end, err := dec.Token()
	if err != nil {
		return err
	}
	if end != closer {
		return fmt.Errorf("expected %q, got %v", rune(closer), end)
	}
	if n > 0 {
		newline(b, depth)
	}
	b.WriteRune(rune(closer))
	return nil
}

func newline(b *strings.Builder, depth int) {
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indentUnit, depth))
}

func writeString(b *strings.Builder, s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	b.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return nil
}
