package dep

import (
	"errors"
	"io/fs"
	"os"
)

// readFile reads the whole file, treating disappearance between stamping and
// reading as an absent file rather than an error.
func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return content, err
}
