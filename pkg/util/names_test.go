package util

import (
	"strings"
	"testing"
)

func TestRandomName(t *testing.T) {
	tests := []struct {
		name     string
		pick     func(n int) int
		expected string
	}{
		{
			name:     "first words",
			pick:     func(n int) int { return 0 },
			expected: "bold_panda",
		},
		{
			name:     "last words",
			pick:     func(n int) int { return n - 1 },
			expected: "wise_hawk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RandomName(tt.pick); got != tt.expected {
				t.Errorf("RandomName() = %v, want %v", got, tt.expected)
			}
		})
	}

	t.Run("always underscore separated", func(t *testing.T) {
		i := 0
		pick := func(n int) int {
			i++
			return i % n
		}
		for j := 0; j < 20; j++ {
			if parts := strings.Split(RandomName(pick), "_"); len(parts) != 2 {
				t.Errorf("RandomName() produced %v", parts)
			}
		}
	})
}

func TestNameSpace(t *testing.T) {
	if got := NameSpace(); got != 49 {
		t.Errorf("NameSpace() = %d, want 49", got)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"long id", "9c7a54a9a43cabcdef0123456789", "9c7a54a9a43c"},
		{"already short", "a6bd71f48f68", "a6bd71f48f68"},
		{"shorter than twelve", "abc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortID(tt.input); got != tt.expected {
				t.Errorf("ShortID(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
