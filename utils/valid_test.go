package utils

import "testing"

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"9876543210", "9876543210", false},
		{"+91 98765 43210", "9876543210", false},
		{"919876543210", "9876543210", false},
		{"09876543210", "9876543210", false},
		{"98-76-54-32-10", "9876543210", false},
		{"12345", "", true},
		{"98765432101234", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := SanitizePhone(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SanitizePhone(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("SanitizePhone(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeEmail(t *testing.T) {
	got, err := SanitizeEmail("  Asha.Verma@Example.COM ")
	if err != nil {
		t.Fatalf("SanitizeEmail failed: %v", err)
	}
	if got != "asha.verma@example.com" {
		t.Errorf("email = %q, want lowercased trimmed", got)
	}

	if _, err := SanitizeEmail("not-an-email"); err == nil {
		t.Error("invalid email should fail")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := SanitizeInput("  hello  "); got != "hello" {
		t.Errorf("SanitizeInput trim = %q", got)
	}
	if got := SanitizeInput("<b>bold</b>"); got != "&lt;b&gt;bold&lt;/b&gt;" {
		t.Errorf("SanitizeInput escape = %q", got)
	}
}

func TestParseFloat(t *testing.T) {
	if v, err := ParseFloat("750.50"); err != nil || v != 750.50 {
		t.Errorf("ParseFloat(750.50) = %v, %v", v, err)
	}
	if v, err := ParseFloat(""); err != nil || v != 0 {
		t.Errorf("ParseFloat(empty) = %v, %v, want 0", v, err)
	}
	if _, err := ParseFloat("abc"); err == nil {
		t.Error("ParseFloat(abc) should fail")
	}
}
