package store

import (
	"errors"
	"testing"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"garden.ply", "garden.ply", false},
		{"scenes/garden.spz", "scenes/garden.spz", false},
		{"scenes//./garden.spz", "scenes/garden.spz", false},
		{"", "", true},
		{"/etc/passwd", "", true},
		{"../outside.ply", "", true},
		{"a/../../b.ply", "", true},
		{"..", "", true},
		{".", "", true},
		{`a\b.ply`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanName(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("CleanName(%q) error = %v, want ErrInvalidName", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CleanName(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		if got := NormalizePrefix(tt.input); got != tt.want {
			t.Errorf("NormalizePrefix(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
