// Package media provides data-URI handling and ffmpeg-based video compression
// for inputs arriving as base64 payloads.
package media

import (
	"fmt"
	"strings"
)

// StripDataURI extracts the raw base64 payload from a data URI.
// A string without a data: prefix passes through unchanged.
func StripDataURI(data string) string {
	if !strings.HasPrefix(data, "data:") {
		return data
	}
	if _, payload, ok := strings.Cut(data, ","); ok {
		return payload
	}
	return data
}

// DataURI wraps a base64 payload in a data URI with the given MIME type.
func DataURI(contentType, b64 string) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, b64)
}

// AudioContentType sniffs the audio MIME type from a data URI header.
// Raw base64 without a header defaults to audio/mp3.
func AudioContentType(data string) string {
	if !strings.HasPrefix(data, "data:") {
		return "audio/mp3"
	}
	header, _, _ := strings.Cut(data, ",")
	header = strings.ToLower(header)
	switch {
	case strings.Contains(header, "wav"):
		return "audio/wav"
	case strings.Contains(header, "m4a"):
		return "audio/m4a"
	case strings.Contains(header, "ogg"):
		return "audio/ogg"
	default:
		return "audio/mp3"
	}
}

// Ext returns the file extension for a MIME type, e.g. "mp3" for "audio/mp3".
func Ext(contentType string) string {
	if _, sub, ok := strings.Cut(contentType, "/"); ok {
		return sub
	}
	return contentType
}
