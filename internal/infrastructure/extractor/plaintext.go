package extractor

import (
	"fmt"
	"os"
	"unicode/utf8"
)

func extractPlaintext(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("file is not valid UTF-8 text")
	}
	return string(raw), nil
}
