package common

import (
	"testing"
)

func TestNormalizeLinkURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "absolute https unchanged",
			input: "https://example.org/page",
			want:  "https://example.org/page",
		},
		{
			name:  "absolute http unchanged",
			input: "http://example.org",
			want:  "http://example.org",
		},
		{
			name:  "bare host gets https prefix",
			input: "example.org/events/2025",
			want:  "https://example.org/events/2025",
		},
		{
			name:  "whitespace trimmed",
			input: "  example.org  ",
			want:  "https://example.org",
		},
		{
			name:  "empty allowed",
			input: "",
			want:  "",
		},
		{
			name:  "localhost with port allowed",
			input: "localhost:8080/admin",
			want:  "https://localhost:8080/admin",
		},
		{
			name:    "single word rejected",
			input:   "notaurl",
			wantErr: true,
		},
		{
			name:    "unsupported scheme rejected",
			input:   "ftp://example.org/file",
			wantErr: true,
		},
		{
			name:    "scheme without host rejected",
			input:   "https://",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLinkURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeLinkURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("NormalizeLinkURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
