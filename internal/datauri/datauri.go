// Package datauri encodes binary media as self-contained data URIs.
package datauri

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

var ErrMalformed = errors.New("malformed data uri")

// Encode returns data:<mime>;base64,<payload>. An empty mimeType is sniffed from the bytes.
func Encode(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	// drop parameters such as "; charset=binary"
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a base64 data URI back into its MIME type and bytes.
func Decode(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrMalformed
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrMalformed
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, ErrMalformed
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Join(ErrMalformed, err)
	}
	return mimeType, data, nil
}

// MediaType reports the MIME type of a data URI, or "" when it is not one.
func MediaType(uri string) string {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ""
	}
	header, _, _ := strings.Cut(rest, ",")
	mimeType, _, _ := strings.Cut(header, ";")
	return mimeType
}
