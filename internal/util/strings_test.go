package util

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"long string truncated", "hello world", 8, "hello..."},
		{"tiny width returns ellipsis", "hello", 3, "..."},
		{"zero width returns ellipsis", "hello", 0, "..."},
		{"unicode counted as runes", "日本語のファイル名", 6, "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short path unchanged", "Assets/a.png", 20, "Assets/a.png"},
		{"middle elided", "Assets/Textures/Environment/rock_diffuse.png", 24, "Assets/...ck_diffuse.png"},
		{"tiny width returns ellipsis", "Assets/a.png", 3, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePath(tt.input, tt.maxLen)
			if len([]rune(got)) > tt.maxLen {
				t.Errorf("TruncatePath(%q, %d) = %q, longer than limit", tt.input, tt.maxLen, got)
			}
			if got != tt.want {
				t.Errorf("TruncatePath(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncatePath_KeepsFileName(t *testing.T) {
	got := TruncatePath("Assets/Very/Deep/Directory/Tree/player_model.fbx", 30)
	if !strings.HasSuffix(got, "player_model.fbx") {
		t.Errorf("TruncatePath dropped the file name: %q", got)
	}
	if !strings.HasPrefix(got, "Assets/") {
		t.Errorf("TruncatePath dropped the leading context: %q", got)
	}
}

func TestTruncateANSI(t *testing.T) {
	t.Run("plain string passes through", func(t *testing.T) {
		if got := TruncateANSI("hello", 10); got != "hello" {
			t.Errorf("got %q, want %q", got, "hello")
		}
	})

	t.Run("tiny width returns ellipsis", func(t *testing.T) {
		if got := TruncateANSI("hello world", 2); got != "..." {
			t.Errorf("got %q, want %q", got, "...")
		}
	})

	t.Run("styled string truncates to visual width", func(t *testing.T) {
		styled := lipgloss.NewStyle().Bold(true).Render("hello world, this is long")
		got := TruncateANSI(styled, 10)
		if w := lipgloss.Width(got); w > 10 {
			t.Errorf("visual width = %d, want <= 10", w)
		}
		if !strings.Contains(got, "...") {
			t.Errorf("truncated string missing ellipsis: %q", got)
		}
	})

	t.Run("styled string within width unchanged", func(t *testing.T) {
		styled := lipgloss.NewStyle().Bold(true).Render("short")
		if got := TruncateANSI(styled, 20); got != styled {
			t.Errorf("got %q, want unchanged %q", got, styled)
		}
	})
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"ascii", "hello", 5},
		{"empty", "", 0},
		{"wide runes count double", "素材", 4},
		{"ansi escapes are free", lipgloss.NewStyle().Bold(true).Render("hi"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayWidth(tt.in); got != tt.want {
				t.Errorf("DisplayWidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
