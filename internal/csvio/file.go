package csvio

import (
	"fmt"
	"os"

	"github.com/Tiliavir/workday-tracker/internal/storage"
)

// ReadFile returns the whole content of the CSV file at path.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile replaces the file at path with text.
func WriteFile(path, text string) error {
	if err := storage.WriteFileAtomic(path, []byte(text)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
