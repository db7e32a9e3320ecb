// Package artifact reads the category source file and writes the JSON
// artifact consumed by the front-end.
package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/giygas/supply-status/logging"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var (
	// ErrSourceUnreadable means the source is missing, unreadable or not text
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrDestinationUnwritable means the artifact could not be written
	ErrDestinationUnwritable = errors.New("destination unwritable")
)

// Encoding is the character encoding of the source file.
type Encoding string

const (
	EncodingUTF8     Encoding = "utf-8"
	EncodingShiftJIS Encoding = "shift_jis"
	// EncodingAuto reads UTF-8 when the bytes are valid UTF-8 and Shift-JIS
	// otherwise, for sources saved from Excel.
	EncodingAuto Encoding = "auto"
)

// ParseEncoding validates an encoding name
func ParseEncoding(value string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	case "shift_jis", "shift-jis", "sjis", "cp932":
		return EncodingShiftJIS, nil
	case "auto":
		return EncodingAuto, nil
	}
	return "", fmt.Errorf("unknown encoding %q", value)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads the whole source file and returns it as UTF-8 without a
// byte order mark. The file is closed before ReadSource returns.
func ReadSource(path string, enc Encoding) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
	}

	content, err := decode(raw, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnreadable, path, err)
	}

	logging.Debug("Source read", "path", path, "bytes", len(raw), "encoding", string(enc))
	return content, nil
}

func decode(raw []byte, enc Encoding) ([]byte, error) {
	// A BOM settles the encoding whatever was configured
	if bytes.HasPrefix(raw, utf8BOM) {
		raw = raw[len(utf8BOM):]
		if !utf8.Valid(raw) {
			return nil, errors.New("content after UTF-8 BOM is not valid UTF-8")
		}
		return raw, nil
	}

	switch enc {
	case EncodingShiftJIS:
		return decodeShiftJIS(raw)
	case EncodingAuto:
		if utf8.Valid(raw) {
			return raw, nil
		}
		logging.Info("Source is not valid UTF-8, decoding as Shift-JIS")
		return decodeShiftJIS(raw)
	default:
		if !utf8.Valid(raw) {
			return nil, errors.New("content is not valid UTF-8")
		}
		return raw, nil
	}
}

func decodeShiftJIS(raw []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}
	return decoded, nil
}
