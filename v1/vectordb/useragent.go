package vectordb

import (
	"strings"
	"unicode"
)

// ClientName identifies this library in User-Agent strings.
const ClientName = "pinecone-client-go"

// DefaultAPIVersion is the data-plane API version sent with every request.
const DefaultAPIVersion = "2025-04"

// UserAgent returns the client id sent by both transports. A non-empty
// sourceTag is normalized (lowercased, runs of spaces turned into one
// underscore, anything but letters, digits, underscores and colons dropped)
// and appended as "; source_tag=<tag>".
func UserAgent(sourceTag string) string {
	tag := NormalizeSourceTag(sourceTag)
	if tag == "" {
		return ClientName
	}
	return ClientName + "; source_tag=" + tag
}

// NormalizeSourceTag applies the source tag rules of UserAgent.
func NormalizeSourceTag(tag string) string {
	tag = strings.Join(strings.Fields(strings.ToLower(tag)), "_")
	return strings.Map(func(r rune) rune {
		if r == '_' || r == ':' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, tag)
}
