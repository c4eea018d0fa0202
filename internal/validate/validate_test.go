package validate

import (
	"strings"
	"testing"
)

func TestQty(t *testing.T) {
	cases := map[string]int{"": 1, "abc": 1, "0": 1, "-3": 1, "2": 2, " 7 ": 7, "500": 50}
	for in, want := range cases {
		if got := Qty(in); got != want {
			t.Errorf("Qty(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestSetQtyAllowsZero(t *testing.T) {
	if n, ok := SetQty("0"); !ok || n != 0 {
		t.Fatalf("SetQty(0) = %d,%v", n, ok)
	}
	if n, ok := SetQty("-1"); !ok || n != -1 {
		t.Fatalf("SetQty(-1) = %d,%v", n, ok)
	}
	if _, ok := SetQty("x"); ok {
		t.Fatal("SetQty(x) should fail")
	}
}

func TestEmailAndID(t *testing.T) {
	if _, ok := Email("a@b.co"); !ok {
		t.Fatal("valid email rejected")
	}
	if _, ok := Email("not-an-email"); ok {
		t.Fatal("invalid email accepted")
	}
	if _, ok := ID("COD-1700000000000"); !ok {
		t.Fatal("order id rejected")
	}
	if _, ok := ID("../etc"); ok {
		t.Fatal("traversal id accepted")
	}
}

func TestPassword(t *testing.T) {
	if !Password("Passw0rd!") {
		t.Fatal("strong password rejected")
	}
	for _, p := range []string{"short1!", "alllowercase1!", "NoDigits!!", "NoSymbol11"} {
		if Password(p) {
			t.Errorf("weak password %q accepted", p)
		}
	}
}

func TestDate(t *testing.T) {
	if d, ok := Date(""); !ok || !d.IsZero() {
		t.Fatal("empty date should be zero and ok")
	}
	if _, ok := Date("2025-13-01"); ok {
		t.Fatal("bad month accepted")
	}
	if d, ok := Date("2025-01-31"); !ok || d.Day() != 31 {
		t.Fatal("good date rejected")
	}
}

func TestClampQty(t *testing.T) {
	for in, want := range map[int]int{-2: 1, 0: 1, 3: 3, MaxQty + 1: MaxQty} {
		if got := ClampQty(in); got != want {
			t.Errorf("ClampQty(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFilterAcceptsEmailsAndNames(t *testing.T) {
	for _, in := range []string{"alice@shopfront.test", "Alice, A.", "COD-1700000000000", " Zoë "} {
		if _, ok := Filter(in); !ok {
			t.Errorf("Filter(%q) rejected", in)
		}
	}
	for _, in := range []string{"", "   ", "tab\there", "\xff\xfe", strings.Repeat("a", 101)} {
		if _, ok := Filter(in); ok {
			t.Errorf("Filter(%q) accepted", in)
		}
	}
}
