package record

import (
	"errors"
	"testing"

	"github.com/cyra/proxylog/internal/ipv4"
)

func TestParseFormat(t *testing.T) {
	for _, f := range Formats() {
		got, err := ParseFormat(f.String())
		if err != nil || got != f {
			t.Errorf("ParseFormat(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseFormat("apache"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ParseFormat(apache) err = %v, want ErrUnknownFormat", err)
	}
	if got, _ := ParseFormat(" Combined "); got != Combined {
		t.Errorf("ParseFormat is not case insensitive: %v", got)
	}
}

func TestParseField(t *testing.T) {
	for f := Timestamp; f < UnknownField; f++ {
		got, err := ParseField(f.String())
		if err != nil || got != f {
			t.Errorf("ParseField(%q) = %v, %v", f.String(), got, err)
		}
	}
	if _, err := ParseField("bogus"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("ParseField(bogus) err = %v", err)
	}
}

func TestAccessors(t *testing.T) {
	r := &Record{
		Format:              Squid,
		Timestamp:           1603310517,
		ClientAddr:          ipv4.ToUint32("192.168.15.28"),
		ResponseTime:        494,
		SizeReply:           5182,
		ReqMethod:           "GET",
		ReqStatusHierStatus: "TCP_MISS/200",
	}

	intTests := []struct {
		f    Field
		want int
	}{
		{ResponseTime, 494},
		{TotalSizeReply, 5182},
		{HTTPStatus, 0},
		{ReqMethod, -1},
		{Timestamp, -1},
	}
	for _, tt := range intTests {
		if got := r.IntField(tt.f); got != tt.want {
			t.Errorf("IntField(%v) = %d, want %d", tt.f, got, tt.want)
		}
	}

	if got := r.UintField(Timestamp); got != 1603310517 {
		t.Errorf("UintField(Timestamp) = %d", got)
	}
	if got := r.UintField(ResponseTime); got != 0 {
		t.Errorf("UintField(ResponseTime) = %d, want 0", got)
	}

	strTests := []struct {
		f    Field
		want string
	}{
		{ClientAddr, "192.168.15.28"},
		{ReqMethod, "GET"},
		{ReqStatusHierStatus, "TCP_MISS/200"},
		{TotalSizeReply, InvalidText},
		{UnknownField, InvalidText},
	}
	for _, tt := range strTests {
		if got := r.StrField(tt.f); got != tt.want {
			t.Errorf("StrField(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}

	if k := r.Key(); k.Timestamp != 1603310517 || k.Addr != r.ClientAddr {
		t.Errorf("Key() = %+v", k)
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		r      Record
		want   int
		wantOK bool
	}{
		{"squid suffix", Record{Format: Squid, ReqStatusHierStatus: "TCP_MISS/200"}, 200, true},
		{"squid nested", Record{Format: Squid, ReqStatusHierStatus: "A/B/404"}, 404, true},
		{"squid aborted", Record{Format: Squid, ReqStatusHierStatus: "NONE_NONE/000"}, 0, true},
		{"squid no slash", Record{Format: Squid, ReqStatusHierStatus: "NONE"}, 0, false},
		{"squid no digits", Record{Format: Squid, ReqStatusHierStatus: "TCP_MISS/"}, 0, false},
		{"common explicit", Record{Format: Common, HTTPStatus: 301, ReqStatusHierStatus: "TCP_MISS:HIER_DIRECT"}, 301, true},
		{"combined explicit", Record{Format: Combined, HTTPStatus: 503}, 503, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.r.StatusCode()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("StatusCode() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
