package parser

import (
	"fmt"
	"os"
	"strings"
)

func parseText(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file %s: %w", path, err)
	}

	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("no content in text file %s", path)
	}
	return text, nil
}
