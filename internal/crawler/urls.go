package crawler

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadURLs returns the trimmed, non-empty lines of path in file order.
// Duplicates are kept.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read url list %s: %w", path, err)
	}
	return urls, nil
}
