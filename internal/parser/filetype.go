package parser

import (
	"mime"
	"net/url"
	"strings"
	"unicode"
)

// Filetype returns the extension, leading dot included, of the final
// component of a request URL, or "" when none can be derived.
//
// The URL must start with "http". The URL is treated as a file path: the
// extension is taken from the text after the last "/", so
// "http://host.example" yields ".example". Query and fragment text are not
// cut first; any punctuation other than '.' and '?' in the extension rejects
// it, so "b.png?x=1" and "page.html#top" yield "". A trailing non-letter is
// trimmed once, turning "setup.cab?" into ".cab" and ".mp3" into ".mp".
func Filetype(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		return ""
	}
	ext := fileExt(rawURL)
	if ext == "" {
		return ""
	}
	for _, c := range ext {
		if c == '.' || c == '?' {
			continue
		}
		if !isAlnum(c) {
			return ""
		}
	}
	if last := rune(ext[len(ext)-1]); !unicode.IsLetter(last) {
		ext = ext[:len(ext)-1]
	}
	if ext == "" || ext == "." {
		return ""
	}
	return ext
}

// fileExt is the extension of the last path component of p. A component
// that is only a leading dot, like ".profile", has none.
func fileExt(p string) string {
	base := p[strings.LastIndexByte(p, '/')+1:]
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || base == ".." {
		return ""
	}
	return base[i:]
}

// FiletypeDescription returns the MIME type registered for ext, or
// UnknownDescription.
func FiletypeDescription(ext string) string {
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return UnknownDescription
}

// DecodeURL percent-decodes raw, mapping '+' to a space. Malformed escapes
// leave raw unchanged.
func DecodeURL(raw string) string {
	s, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return s
}

func isAlnum(c rune) bool {
	return c < unicode.MaxASCII && (unicode.IsLetter(c) || unicode.IsDigit(c))
}
