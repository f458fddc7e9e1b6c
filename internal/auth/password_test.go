package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		cost     int
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "validpassword123",
			cost:     10,
			wantErr:  nil,
		},
		{
			name:     "password too long",
			password: strings.Repeat("a", 73),
			cost:     10,
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "password at maximum length",
			password: strings.Repeat("a", 72),
			cost:     10,
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, tt.cost)
			if err != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
		})
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	first, err := HashPassword("samepassword", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := HashPassword("samepassword", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("identical passwords produced identical hashes; salt is not randomized")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name      string
		candidate string
		hash      string
		want      bool
	}{
		{
			name:      "correct password",
			candidate: "correct horse",
			hash:      hash,
			want:      true,
		},
		{
			name:      "incorrect password",
			candidate: "wrong horse",
			hash:      hash,
			want:      false,
		},
		{
			name:      "surrounding whitespace is trimmed",
			candidate: "  correct horse\n",
			hash:      hash,
			want:      true,
		},
		{
			name:      "interior whitespace is preserved",
			candidate: "correct  horse",
			hash:      hash,
			want:      false,
		},
		{
			name:      "empty candidate",
			candidate: "",
			hash:      hash,
			want:      false,
		},
		{
			name:      "malformed hash is a mismatch, not a panic",
			candidate: "correct horse",
			hash:      "not-a-bcrypt-hash",
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.candidate, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
