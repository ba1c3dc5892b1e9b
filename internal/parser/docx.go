package parser

import (
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func parseDOCX(path string) (string, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer doc.Close()

	text := strings.TrimSpace(doc.Editable().GetContent())
	if text == "" {
		return "", fmt.Errorf("no text extracted from docx %s", path)
	}
	return text, nil
}
