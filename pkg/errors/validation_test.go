package errors

import (
	"testing"
)

func TestValidateSource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"local file", "maps/street.png", false},
		{"absolute file", "/tmp/street.png", false},
		{"url", "https://example.com/street.png", false},

		{"empty", "", true},
		{"ftp url", "ftp://example.com/street.png", true},
		{"control char", "street\x01.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSource(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSource(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "src/main.go", false},
		{"valid nested", "pkg/internal/util/helpers.go", false},
		{"valid filename only", "README.md", false},
		{"valid with dots", "v1.2.3/package.json", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute path", "/etc/passwd", true},
		{"path traversal", "../../../etc/passwd", true},
		{"path traversal middle", "foo/../bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateArtworkID(t *testing.T) {
	if err := ValidateArtworkID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"); err != nil {
		t.Errorf("valid id rejected: %v", err)
	}
	for _, id := range []string{"", "abc", "../etc/passwd"} {
		if err := ValidateArtworkID(id); !Is(err, ErrCodeInvalidInput) {
			t.Errorf("ValidateArtworkID(%q) = %v", id, err)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	allowed := []string{"svg", "png", "json"}
	if err := ValidateFormats([]string{"svg", "png"}, allowed...); err != nil {
		t.Errorf("valid formats rejected: %v", err)
	}
	if err := ValidateFormats([]string{"pdf"}, allowed...); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("pdf accepted: %v", err)
	}
	if err := ValidateFormats(nil, allowed...); !Is(err, ErrCodeInvalidFormat) {
		t.Errorf("empty list accepted: %v", err)
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidImage,
		ErrCodeInvalidFormat,
		ErrCodeInvalidStyle,
		ErrCodeInvalidStrategy,
		ErrCodeInvalidAudio,
		ErrCodeInvalidPath,
		ErrCodeNotFound,
		ErrCodeArtworkNotFound,
		ErrCodeFileNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
