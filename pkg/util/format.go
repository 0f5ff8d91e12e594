package util

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatBytes renders a byte count using binary units
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// SizePrefix returns the leading decimal number of a human size string
// ("187MB" -> 187, "13.3kB" -> 13.3). Strings without one count as zero.
func SizePrefix(size string) float64 {
	size = strings.TrimSpace(size)
	end := 0
	seenDot := false
	for end < len(size) {
		c := size[end]
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(size[:end], "."), 64)
	if err != nil {
		return 0
	}
	return n
}
