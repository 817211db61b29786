package ipv4

import "testing"

func TestToUint32(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint32
	}{
		{name: "private", in: "192.168.1.110", want: 3232235886},
		{name: "zero", in: "0.0.0.0", want: 0},
		{name: "broadcast", in: "255.255.255.255", want: 0xffffffff},
		{name: "octet overflow", in: "192.168.1.256", want: 0},
		{name: "three octets", in: "10.0.1", want: 0},
		{name: "five octets", in: "10.0.0.1.2", want: 0},
		{name: "ipv6", in: "::1", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "garbage", in: "host.example", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToUint32(tt.in); got != tt.want {
				t.Errorf("ToUint32(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"1.2.3.4", "0.0.0.0", "255.255.255.255", "192.168.15.28"}
	invalid := []string{"", "1.2.3", "1.2.3.4.5", "256.1.1.1", "a.b.c.d", "1.2.3.-4", "fe80::1"}

	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("IsValid(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("IsValid(%q) = true, want false", s)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"192.168.15.28", "10.0.0.1", "0.0.0.0", "255.255.255.255", "109.202.202.202"} {
		if got := ToText(ToUint32(s)); got != s {
			t.Errorf("ToText(ToUint32(%q)) = %q", s, got)
		}
	}
}

func TestAddrOrdering(t *testing.T) {
	a := Parse("10.0.0.2")
	b := Parse("10.0.0.10")

	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Errorf("Compare ordering broken for %s and %s", a, b)
	}
	if a.String() != "10.0.0.2" {
		t.Errorf("String() = %q", a.String())
	}
	if Parse("bogus") != 0 {
		t.Error("invalid address should parse to zero")
	}
}

func TestRangeContains(t *testing.T) {
	r := NewRange(ToUint32("192.168.1.1"), ToUint32("192.168.1.107"))

	tests := []struct {
		addr string
		want bool
	}{
		{"192.168.1.1", true},
		{"192.168.1.107", true},
		{"192.168.1.50", true},
		{"192.168.1.108", false},
		{"192.168.0.255", false},
	}
	for _, tt := range tests {
		if got := r.Contains(ToUint32(tt.addr)); got != tt.want {
			t.Errorf("Contains(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}

	inverted := NewRange(ToUint32("10.0.0.9"), ToUint32("10.0.0.1"))
	if inverted.Contains(ToUint32("10.0.0.5")) {
		t.Error("inverted range should contain nothing")
	}

	point := NewRange(ToUint32("10.0.0.5"), ToUint32("10.0.0.5"))
	if !point.Contains(ToUint32("10.0.0.5")) {
		t.Error("single-address range should contain its address")
	}
}
