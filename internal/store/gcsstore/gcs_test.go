package gcsstore

import (
	"testing"

	"github.com/splatkit/spz/internal/codec/noopcodec"
	"github.com/splatkit/spz/internal/codec/zstdcodec"
)

func TestWithPrefix(t *testing.T) {
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
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			opt := WithPrefix(tt.input)
			opt(s)
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestParsePath(t *testing.T) {
	tests := []struct {
		path       string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{"gs://bucket", "bucket", "", false},
		{"gs://bucket/", "bucket", "", false},
		{"gs://bucket/scenes", "bucket", "scenes/", false},
		{"gs://bucket/a/b/", "bucket", "a/b/", false},
		{"gs://", "", "", true},
		{"s3://bucket", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, prefix, err := ParsePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if bucket != tt.wantBucket || prefix != tt.wantPrefix {
				t.Errorf("ParsePath(%q) = %q, %q, want %q, %q", tt.path, bucket, prefix, tt.wantBucket, tt.wantPrefix)
			}
		})
	}
}

func TestStore_key(t *testing.T) {
	s := &Store{codec: zstdcodec.New(), prefix: "data/v1/"}

	got, err := s.key("scenes/garden.spz")
	if err != nil {
		t.Fatalf("key() error = %v", err)
	}
	if want := "data/v1/scenes/garden.spz.zst"; got != want {
		t.Errorf("key() = %q, want %q", got, want)
	}

	if _, err := s.key("../garden.spz"); err == nil {
		t.Error("key() with escaping name should return error")
	}
}

func TestStore_name(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"data/v1/scenes/garden.spz.zst", "scenes/garden.spz", true},
		{"data/v1/readme.txt", "", false},
		{"data/v1/.zst", "", false},
	}

	s := &Store{codec: zstdcodec.New(), prefix: "data/v1/"}
	for _, tt := range tests {
		got, ok := s.name(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("name(%q) = %q, %v, want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	plain := &Store{codec: noopcodec.New()}
	if got, ok := plain.name("a.ply"); got != "a.ply" || !ok {
		t.Errorf("name(a.ply) = %q, %v, want a.ply, true", got, ok)
	}
}
