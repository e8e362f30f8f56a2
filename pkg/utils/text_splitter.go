package utils

import "strings"

// SplitWindows cuts text into consecutive windows of at most size runes.
// Windows containing only whitespace are dropped. A non-positive size
// returns the whole text as a single window.
func SplitWindows(text string, size int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}

	windows := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		// Strict rune slicing: a word cut in half is preferable to losing data.
		window := string(runes[i:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		windows = append(windows, window)
	}

	return windows
}
