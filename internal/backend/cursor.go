package backend

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const cursorSeparator = "|"

// encodeCursor builds an opaque next_page_token from the created_at and id of the last row.
func encodeCursor(createdAt, id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(createdAt + cursorSeparator + id))
}

// decodeCursor parses an opaque page_token into created_at and id.
func decodeCursor(token string) (createdAt, id string, err error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", fmt.Errorf("base64: %w", err)
	}
	parts := strings.SplitN(string(b), cursorSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid cursor format")
	}
	return parts[0], parts[1], nil
}
