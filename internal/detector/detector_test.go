package detector

import (
	"testing"
)

var shared = New()

func TestDetector_DetectISO(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{name: "empty text", text: "", wantOK: false},
		{name: "english text", text: "Hello, this is a test in English.", wantCode: "EN", wantOK: true},
		{name: "ukrainian text", text: "Привіт, це тест українською мовою.", wantCode: "UK", wantOK: true},
		{name: "german text", text: "Hallo, das ist ein Test auf Deutsch.", wantCode: "DE", wantOK: true},
		{name: "french text", text: "Bonjour, ceci est un test en français.", wantCode: "FR", wantOK: true},
		{name: "greek text", text: "Γεια σας, αυτό είναι ένα δοκιμαστικό κείμενο.", wantCode: "EL", wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := shared.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_Check(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		code         string
		wantDetected string
		wantMismatch bool
	}{
		{name: "no culture", text: "This sentence is long enough to be detected.", code: ""},
		{name: "short text", text: "Annuler", code: "de"},
		{name: "matching language", text: "Ceci est une phrase assez longue en français.", code: "fr", wantDetected: "fr"},
		{name: "matching with region", text: "Ceci est une phrase assez longue en français.", code: "fr-CA", wantDetected: "fr"},
		{name: "untranslated copy", text: "Please enter your password to continue.", code: "fr", wantDetected: "en", wantMismatch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detected, mismatch := shared.Check(tt.text, tt.code)
			if mismatch != tt.wantMismatch {
				t.Errorf("Check(%q, %q) mismatch = %v, want %v", tt.text, tt.code, mismatch, tt.wantMismatch)
			}
			if detected != tt.wantDetected {
				t.Errorf("Check(%q, %q) detected = %q, want %q", tt.text, tt.code, detected, tt.wantDetected)
			}
		})
	}
}

func TestForCodes(t *testing.T) {
	d := ForCodes("en", "fr-FR", "xx")
	code, ok := d.DetectISO("Bonjour, ceci est un test en français.")
	if !ok || code != "FR" {
		t.Errorf("DetectISO = %q, %v; want FR", code, ok)
	}
}

func TestBaseCode(t *testing.T) {
	for in, want := range map[string]string{"fr": "fr", "fr-CA": "fr", "zh_Hans": "zh", "": ""} {
		if got := baseCode(in); got != want {
			t.Errorf("baseCode(%q) = %q, want %q", in, got, want)
		}
	}
}
