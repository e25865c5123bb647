package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestVaultPathSanitizesDocumentType(t *testing.T) {
	var r PathResolver

	got := r.Vault(12, "0205CS211001", "Income Certificate (2024)")
	want := "students/12_0205cs211001/vault/income_certificate_2024"
	if got != want {
		t.Fatalf("vault path = %q, want %q", got, want)
	}
}

func TestVaultPathWithoutEnrollment(t *testing.T) {
	var r PathResolver

	got := r.Vault(7, "", "Aadhaar-Card")
	want := "students/7/vault/aadhaar-card"
	if got != want {
		t.Fatalf("vault path = %q, want %q", got, want)
	}
}

func TestVaultPathEmptyTypeFallsBack(t *testing.T) {
	var r PathResolver

	got := r.Vault(3, "", "!!!")
	want := "students/3/vault/uncategorized"
	if got != want {
		t.Fatalf("vault path = %q, want %q", got, want)
	}
}

func TestApplicationPath(t *testing.T) {
	var r PathResolver

	got, err := r.Application(12, "EN-42", 2025, 9, 101)
	if err != nil {
		t.Fatalf("Application returned error: %v", err)
	}
	want := "students/12_en-42/applications/2025/9/101"
	if got != want {
		t.Fatalf("application path = %q, want %q", got, want)
	}
}

func TestApplicationPathDefaultsToCurrentYear(t *testing.T) {
	var r PathResolver

	got, err := r.Application(12, "", 0, 9, 101)
	if err != nil {
		t.Fatalf("Application returned error: %v", err)
	}
	want := fmt.Sprintf("students/12/applications/%d/9/101", time.Now().Year())
	if got != want {
		t.Fatalf("application path = %q, want %q", got, want)
	}
}

func TestApplicationPathRequiresIDs(t *testing.T) {
	var r PathResolver

	if _, err := r.Application(12, "", 2025, 0, 101); !errors.Is(err, ErrPathConfig) {
		t.Fatalf("missing scholarship id: got %v, want ErrPathConfig", err)
	}
	if _, err := r.Application(12, "", 2025, 9, 0); !errors.Is(err, ErrPathConfig) {
		t.Fatalf("missing application id: got %v, want ErrPathConfig", err)
	}
}

func TestPathsAreDeterministic(t *testing.T) {
	var r PathResolver

	first := r.Vault(5, "EN 99", "Mark Sheet")
	second := r.Vault(5, "EN 99", "Mark Sheet")
	if first != second {
		t.Fatalf("vault paths differ: %q vs %q", first, second)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Income Certificate", "income_certificate"},
		{"  Caste/Tribe Certificate  ", "castetribe_certificate"},
		{"10th_Mark-Sheet", "10th_mark-sheet"},
		{"###", ""},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Fatalf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
