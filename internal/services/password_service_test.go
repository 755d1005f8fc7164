package services

import (
	"strings"
	"testing"
)

func TestValidatePassword_Valid(t *testing.T) {
	svc := NewPasswordService()

	violations := svc.ValidatePassword("CorrectHorse9!")
	if len(violations) != 0 {
		t.Errorf("Expected no violations, got %v", violations)
	}
}

func TestValidatePassword_Violations(t *testing.T) {
	svc := NewPasswordService()

	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"too short", "Ab1!", "12 characters"},
		{"missing uppercase", "lowercase123!", "uppercase"},
		{"missing lowercase", "UPPERCASE123!", "lowercase"},
		{"missing digit", "NoDigitsHere!", "digit"},
		{"missing symbol", "NoSymbolsHere1", "special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := svc.ValidatePassword(tt.password)
			if len(violations) == 0 {
				t.Fatalf("Expected violations for %q, got none", tt.password)
			}
			found := false
			for _, v := range violations {
				if strings.Contains(v, tt.want) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected a violation mentioning %q, got %v", tt.want, violations)
			}
		})
	}
}

func TestValidatePassword_EmptyReportsEveryClass(t *testing.T) {
	svc := NewPasswordService()

	violations := svc.ValidatePassword("")
	if len(violations) != 5 {
		t.Errorf("Expected 5 violations for empty password, got %d: %v", len(violations), violations)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	svc := NewPasswordService()

	hash, err := svc.HashPassword("CorrectHorse9!")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hash == "CorrectHorse9!" {
		t.Error("Expected hash to differ from plaintext")
	}

	if err := svc.VerifyPassword("CorrectHorse9!", hash); err != nil {
		t.Errorf("Expected matching password to verify, got %v", err)
	}
	if err := svc.VerifyPassword("WrongHorse9!", hash); err == nil {
		t.Error("Expected mismatched password to fail verification")
	}
}
