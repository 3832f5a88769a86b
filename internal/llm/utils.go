package llm

import "encoding/base64"

// DataURL inlines image bytes as a data URI for a vision request.
func DataURL(data []byte, mediaType string) string {
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
