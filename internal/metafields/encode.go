package metafields

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
)

// EncodeValue serializes a structured metafield value as JSON with a
// space after every object key colon and none after commas. The shop's
// Liquid templates parse these values positionally, so the byte layout
// is part of the contract. HTML escaping stays off for the same reason:
// `&`, `<` and `>` must land in the metafield literally.
func EncodeValue(v any) (string, error) {
	raw, err := marshalNoEscape(v)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding metafield value")
	}

	var out bytes.Buffer
	out.Grow(len(raw) + len(raw)/8)
	inString := false
	escaped := false
	for _, b := range raw {
		out.WriteByte(b)
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case !inString && b == ':':
			out.WriteByte(' ')
		}
	}
	return out.String(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
