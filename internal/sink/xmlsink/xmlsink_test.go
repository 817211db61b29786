package xmlsink

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cyra/proxylog/internal/errcode"
	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/parser"
	"github.com/cyra/proxylog/internal/record"
)

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"report", "report.xml", false},
		{"My Report.XML", "my_report.xml", false},
		{"data.txt", "data.xml", false},
		{"out/Access Log", filepath.Join("out", "access_log.xml"), false},
		{"dir.v2/file", filepath.Join("dir.v2", "file.xml"), false},
		{"a.b.c", "", true},
		{"archive.tar.gz", "", true},
		{"", "", true},
		{".xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeFilename(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errcode.XMLFileNameInconsistent) {
					t.Errorf("NormalizeFilename(%q) err = %v, want XMLFileNameInconsistent", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("NormalizeFilename(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

type parsedDoc struct {
	Generated    string `xml:"generated"`
	Created      string `xml:"created"`
	Filename     string `xml:"filename"`
	TotalEntries int    `xml:"total_entries"`
	LogFormat    struct {
		Format  string `xml:"format,attr"`
		Entries []struct {
			Timestamp string `xml:"timestamp"`
			Addr      string `xml:"clisrcipaddr"`
			Status    string `xml:"reqstatushierstatus"`
			Size      string `xml:"totalsizereply"`
			URL       string `xml:"requrl"`
			Referrer  string `xml:"referrer"`
			UserAgent string `xml:"useragent"`
		} `xml:"entry"`
	} `xml:"logformat"`
}

func readDoc(t *testing.T, path string) parsedDoc {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var d parsedDoc
	if err := xml.Unmarshal(b, &d); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	return d
}

func TestExportSquid(t *testing.T) {
	p, err := parser.New(record.Squid)
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range []string{
		"1603310517.212 494 192.168.15.28 TCP_MISS/200 5182 GET http://h/a.xml - ORIGINAL_DST/109.202.202.202",
		"1603310520.000 12 192.168.15.30 TCP_HIT/304 10 GET http://h/b.png - HIER_NONE/- image/png",
		"1603310600.000 12 10.0.0.1 TCP_MISS/404 0 GET http://h/c - HIER_NONE/- -",
	} {
		if _, err := p.Append(l); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "Squid Export")
	filter := &Filter{From: 1603310517, To: 1603310520, Addrs: ipv4.NewRange(ipv4.ToUint32("192.168.15.1"), ipv4.ToUint32("192.168.15.255"))}
	name, n, err := Export(p, path, filter)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Errorf("entries = %d, want 2", n)
	}
	if !strings.HasSuffix(name, "squid_export.xml") {
		t.Errorf("name = %q", name)
	}
	if p.Size() != 0 {
		t.Errorf("store not cleared after export: %d", p.Size())
	}

	d := readDoc(t, name)
	if d.Generated != Generator || d.TotalEntries != 2 || d.LogFormat.Format != "Squid" || d.Filename != name {
		t.Errorf("header = %+v", d)
	}
	if _, err := time.ParseInLocation(createdLayout, d.Created, time.Local); err != nil {
		t.Errorf("created %q: %v", d.Created, err)
	}
	if len(d.LogFormat.Entries) != 2 {
		t.Fatalf("entries = %d", len(d.LogFormat.Entries))
	}
	first := d.LogFormat.Entries[0]
	if first.Timestamp != "1603310517" || first.Addr != "192.168.15.28" || first.Status != "TCP_MISS/200" || first.Size != "5182" {
		t.Errorf("first entry = %+v", first)
	}
}

func TestExportCombinedEscapes(t *testing.T) {
	p, err := parser.New(record.Combined)
	if err != nil {
		t.Fatal(err)
	}
	line := `192.168.15.10 - - [06/Oct/2021:00:33:25 -0300] "GET http://yum.example/repodata/repomd.xml?a=1&b=2 HTTP/1.1" 200 3779 "-" "libdnf <Linux>" TCP_CLIENT_REFRESH_MISS:ORIGINAL_DST`
	if _, err := p.Append(line); err != nil {
		t.Fatal(err)
	}
	name, n, err := Export(p, filepath.Join(t.TempDir(), "combined"), nil)
	if err != nil || n != 1 {
		t.Fatalf("Export = %q, %d, %v", name, n, err)
	}
	d := readDoc(t, name)
	e := d.LogFormat.Entries[0]
	if e.URL != "http://yum.example/repodata/repomd.xml?a=1&b=2" || e.UserAgent != "libdnf <Linux>" || e.Referrer != "-" {
		t.Errorf("entry = %+v", e)
	}
	if d.LogFormat.Format != "Combined" {
		t.Errorf("format = %q", d.LogFormat.Format)
	}
}

func TestExportBadNameKeepsStore(t *testing.T) {
	p, err := parser.New(record.Referrer)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Append("1603310517 10.0.0.1 - http://h/a.js"); err != nil {
		t.Fatal(err)
	}
	_, _, err = Export(p, filepath.Join(t.TempDir(), "a.b.c"), nil)
	if !errors.Is(err, errcode.XMLFileNameInconsistent) {
		t.Errorf("Export err = %v", err)
	}
	if p.Size() != 1 {
		t.Errorf("store cleared on failed export")
	}
}

func TestSaveUnwritable(t *testing.T) {
	w := New(record.UserAgent)
	_, err := w.Save(filepath.Join(t.TempDir(), "missing", "out"))
	if !errors.Is(err, errcode.XMLFileNotSaved) {
		t.Errorf("Save err = %v, want XMLFileNotSaved", err)
	}
}
