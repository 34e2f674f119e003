package crawler

import (
	"bytes"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// charsetSniffLen matches the prescan window of the HTML charset algorithm.
const charsetSniffLen = 1024

// Decode converts raw document bytes to UTF-8 text.
//
// A charset declared by a byte order mark or a <meta> element is honoured.
// Everything else is decoded as UTF-8, with undecodable byte sequences
// replaced by U+FFFD so that one bad byte never fails the whole run.
func Decode(raw []byte) string {
	enc, name, certain := charset.DetermineEncoding(raw, "text/html")
	if enc != nil && name != "utf-8" && (certain || declaresCharset(raw)) {
		if out, _, err := transform.Bytes(enc.NewDecoder(), raw); err == nil {
			return string(out)
		}
	}

	out, _, err := transform.Bytes(unicode.UTF8BOM.NewDecoder(), raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD")
	}
	return string(out)
}

// declaresCharset reports whether the head of the document mentions a charset.
// DetermineEncoding falls back to windows-1252 for invalid UTF-8 without
// telling whether a declaration was found, so the fallback is told apart here.
func declaresCharset(raw []byte) bool {
	head := raw
	if len(head) > charsetSniffLen {
		head = head[:charsetSniffLen]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}
