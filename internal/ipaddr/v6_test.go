// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ipaddr

import "testing"

func TestParseV6Uncompressed(t *testing.T) {
	addr, ok := ParseV6("2001:0db8:0000:0000:0000:0000:0000:0001")
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	want := "2001:0db8:0000:0000:0000:0000:0000:0001"
	if got := addr.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseV6Compressed(t *testing.T) {
	cases := map[string]string{
		"::1":         "0000:0000:0000:0000:0000:0000:0000:0001",
		"::":          "0000:0000:0000:0000:0000:0000:0000:0000",
		"2001:db8::1": "2001:0db8:0000:0000:0000:0000:0000:0001",
		"2001:db8::":  "2001:0db8:0000:0000:0000:0000:0000:0000",
		"fe80::":      "fe80:0000:0000:0000:0000:0000:0000:0000",
	}
	for in, want := range cases {
		addr, ok := ParseV6(in)
		if !ok {
			t.Fatalf("%q: expected parse to succeed", in)
		}
		if got := addr.String(); got != want {
			t.Errorf("%q: got %s, want %s", in, got, want)
		}
	}
}

func TestParseV6IdempotentExpansion(t *testing.T) {
	inputs := []string{"::1", "2001:db8::1", "fe80::abcd:1234", "1:2:3:4:5:6:7:8"}
	for _, in := range inputs {
		a1, ok := ParseV6(in)
		if !ok {
			t.Fatalf("%q: expected parse to succeed", in)
		}
		a2, ok := ParseV6(a1.String())
		if !ok {
			t.Fatalf("%q: expected re-parse of expanded form to succeed", a1.String())
		}
		if a1 != a2 {
			t.Errorf("expand(expand(%q)) != expand(%q): %s vs %s", in, in, a1.String(), a2.String())
		}
	}
}

func TestParseV6IPv4MappedForm(t *testing.T) {
	addr, ok := ParseV6("::ffff:192.168.0.1")
	if !ok {
		t.Fatalf("expected ::ffff:192.168.0.1 to parse")
	}
	want := "0000:0000:0000:0000:0000:ffff:c0a8:0001"
	if got := addr.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseV6IPv4CompatibleForm(t *testing.T) {
	addr, ok := ParseV6("::192.168.0.1")
	if !ok {
		t.Fatalf("expected ::192.168.0.1 to parse")
	}
	want := "0000:0000:0000:0000:0000:0000:c0a8:0001"
	if got := addr.String(); got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseV6RejectsNonZeroPrefixBeforeV4Tail(t *testing.T) {
	if _, ok := ParseV6("2001:db8::1.2.3.4"); ok {
		t.Fatalf("expected non-zero hextets before an IPv4 tail to be rejected")
	}
}

func TestParseV6RejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"1:2:3:4:5:6:7:8:9",
		"1::2::3",
		"gggg::1",
		"1:2:3:4:5:6:7",
	}
	for _, c := range cases {
		if _, ok := ParseV6(c); ok {
			t.Errorf("expected %q to be rejected", c)
		}
	}
}

func TestV6HostOrPrefixInCidr(t *testing.T) {
	segment, _ := ParseV6CIDR("2001:db8::/32")

	inside, _ := ParseV6CIDR("2001:db8::1")
	if !V6HostOrPrefixInCidr(inside, segment) {
		t.Errorf("expected 2001:db8::1 to be inside 2001:db8::/32")
	}

	outside, _ := ParseV6CIDR("2001:db9::1")
	if V6HostOrPrefixInCidr(outside, segment) {
		t.Errorf("expected 2001:db9::1 to be outside 2001:db8::/32")
	}
}

func TestV6HostOrPrefixInRange(t *testing.T) {
	r := V6Range{}
	r.Start, _ = ParseV6("2001:db8::1")
	r.End, _ = ParseV6("2001:db8::100")

	inside, _ := ParseV6CIDR("2001:db8::50")
	if !V6HostOrPrefixInRange(inside, r) {
		t.Errorf("expected 2001:db8::50 to be inside range")
	}

	outside, _ := ParseV6CIDR("2001:db8::200")
	if V6HostOrPrefixInRange(outside, r) {
		t.Errorf("expected 2001:db8::200 to be outside range")
	}
}

func TestIsAllV6(t *testing.T) {
	if !IsAllV6("0000:0000:0000:0000:0000:0000:0000:0000/0") {
		t.Errorf("expected the fully-expanded ::/0 token to be recognized as all-v6")
	}
}
