package usecase

import (
	"os"
	"strings"
)

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func writeRaw(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}
