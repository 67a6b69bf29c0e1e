package auth

import (
	"errors"
	"testing"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "simple", in: "alice@example.com", want: "alice@example.com"},
		{name: "trims and lowercases", in: "  Alice@Example.COM \n", want: "alice@example.com"},
		{name: "plus tag kept", in: "alice+notes@example.com", want: "alice+notes@example.com"},
		{name: "missing at", in: "alice.example.com", wantErr: true},
		{name: "missing tld", in: "alice@example", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "too short", in: "a@b.c", wantErr: true},
		{name: "spaces inside", in: "al ice@example.com", wantErr: true},
		{name: "disposable domain", in: "alice@mailinator.com", wantErr: true},
		{name: "disposable domain uppercase", in: "alice@YOPMAIL.com", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeEmail(tc.in)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidEmail) {
					t.Fatalf("NormalizeEmail(%q) error = %v, want ErrInvalidEmail", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeEmail(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAssertPasswordStrong_Rejects(t *testing.T) {
	inputs := []string{"alice.smith@example.com"}

	tests := []struct {
		name     string
		password string
	}{
		{name: "too short", password: "Ab1!x"},
		{name: "too long", password: "Ab1!" + string(make([]byte, 70))},
		{name: "no upper", password: "horse-battery7staple!"},
		{name: "no lower", password: "HORSE-BATTERY7STAPLE!"},
		{name: "no digit", password: "Horse-battery!staple"},
		{name: "no special", password: "Horse7batteryStaple"},
		{name: "common with decoration", password: "Password123!"},
		{name: "keyboard walk", password: "Qwerty123!qwerty"},
		{name: "contains email local part", password: "Alice.smith77!Wz"},
		{name: "contains email fragment", password: "xxSmith!42zzQp"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := AssertPasswordStrong(tc.password, inputs); !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("AssertPasswordStrong(%q) = %v, want ErrWeakPassword", tc.password, err)
			}
		})
	}
}

func TestAssertPasswordStrong_Accepts(t *testing.T) {
	inputs := []string{"alice.smith@example.com"}

	passwords := []string{
		"Glorp7!vexing-Mumble",
		"Tepid9walrus-Knits$Quartz",
		"Brine-Okra2!Lantern",
	}
	for _, p := range passwords {
		if err := AssertPasswordStrong(p, inputs); err != nil {
			t.Fatalf("AssertPasswordStrong(%q) = %v, want nil", p, err)
		}
	}
}
