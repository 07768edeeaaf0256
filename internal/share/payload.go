package share

import (
	"encoding/base64"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const octetStream = "application/octet-stream"

// DecodePayload decodes a base64 payload coming from the webview. A data: URL
// prefix ("data:image/png;base64,...") is accepted; its media type is returned
// so callers can use it when no MIME type was given. Both padded and unpadded
// standard encodings are accepted, and ASCII whitespace is ignored.
func DecodePayload(data string) ([]byte, string, error) {
	const op = "decode"

	payload, mediaType := splitDataURL(strings.TrimSpace(data))
	payload = stripSpace(payload)

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return nil, "", newError(op, "", ErrDecode)
		}
		b = raw
	}
	return b, mediaType, nil
}

// DecodedLen returns the decoded size of a base64 payload without decoding
// it. The result is exact for valid input in any form DecodePayload accepts.
func DecodedLen(data string) int64 {
	payload, _ := splitDataURL(strings.TrimSpace(data))
	n := 0
	for i := 0; i < len(payload); i++ {
		switch payload[i] {
		case ' ', '\t', '\r', '\n', '=':
		default:
			n++
		}
	}
	return int64(base64.RawStdEncoding.DecodedLen(n))
}

// splitDataURL strips a "data:<type>;base64," header. Payloads without the
// header are returned unchanged.
func splitDataURL(s string) (string, string) {
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return s, ""
	}
	header = strings.TrimPrefix(header, "data:")
	mediaType, _, _ := strings.Cut(header, ";")
	return payload, strings.TrimSpace(mediaType)
}

func stripSpace(s string) string {
	if !strings.ContainsAny(s, " \t\r\n") {
		return s
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}

// DetectMIMEType guesses the content type from the extension first, then from
// the content itself.
func DetectMIMEType(name string, data []byte) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}
	if len(data) == 0 {
		return octetStream
	}
	return http.DetectContentType(data)
}
