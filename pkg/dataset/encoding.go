package dataset

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodeLatin1 maps every byte to its ISO-8859-1 code point. It never fails
// on real input; the error is kept for the decoder contract.
func decodeLatin1(raw []byte) (string, error) {
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode latin-1: %w", err)
	}
	return string(out), nil
}

// EncodeLatin1 converts UTF-8 text to ISO-8859-1 bytes. Runes outside the
// charset are an error.
func EncodeLatin1(s string) ([]byte, error) {
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode latin-1: %w", err)
	}
	return out, nil
}
