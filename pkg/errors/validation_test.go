package errors

import "testing"

func TestValidateCountdown(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"zero", 0, false},
		{"default", 3, false},
		{"ten", 10, false},
		{"max", MaxCountdownSeconds, false},
		{"negative", -1, true},
		{"too long", MaxCountdownSeconds + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCountdown(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCountdown(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidCountdown) {
				t.Errorf("ValidateCountdown(%d) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"#ffffff", false},
		{"#FFF", false},
		{"#1a1a1a", false},
		{"ffffff", true},
		{"#ffff", true},
		{"#gggggg", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAssetRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "stickers/stars.png", false},
		{"svg frame", "frames/frame-classic.svg", false},
		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret.png", true},
		{"backslash", "frames\\a.png", true},
		{"double slash", "frames//a.png", true},
		{"control", "a\x01.png", true},
		{"too long", string(make([]byte, 300)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAssetRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
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
		{"relative", "out/strip.png", false},
		{"absolute", "/tmp/strip.png", false},
		{"empty", "", true},
		{"null byte", "a\x00b", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
