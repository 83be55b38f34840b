package jsparse

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Unquote returns the value of a quoted JS string literal, decoding
// \xHH, \uHHHH (surrogate pairs joined), \u{...}, legacy octal, the
// single-character escapes and line continuations.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || (lit[0] != '"' && lit[0] != '\'') || lit[len(lit)-1] != lit[0] {
		return "", fmt.Errorf("not a string literal: %s", lit)
	}
	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("trailing backslash in %s", lit)
		}
		c = body[i]
		i++
		switch c {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '\n':
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			v, n, err := hexValue(body[i:], 2)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape in %s: %w", lit, err)
			}
			i += n
			b.WriteRune(rune(v))
		case 'u':
			r, n, err := unicodeEscape(body[i:])
			if err != nil {
				return "", fmt.Errorf("bad \\u escape in %s: %w", lit, err)
			}
			i += n
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i:], `\u`) {
				if lo, m, err := unicodeEscape(body[i+2:]); err == nil {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						r = pair
						i += 2 + m
					}
				}
			}
			b.WriteRune(r)
		default:
			if c >= '0' && c <= '7' {
				v := int(c - '0')
				for k := 0; k < 2 && i < len(body) && body[i] >= '0' && body[i] <= '7' && v*8+int(body[i]-'0') <= 0xff; k++ {
					v = v*8 + int(body[i]-'0')
					i++
				}
				b.WriteRune(rune(v))
				continue
			}
			r, size := utf8.DecodeRuneInString(body[i-1:])
			i += size - 1
			if r == '\u2028' || r == '\u2029' {
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, fmt.Errorf("unterminated code point")
		}
		v, n, err := hexValue(s[1:end], end-1)
		if err != nil || n != end-1 || v > utf8.MaxRune {
			return 0, 0, fmt.Errorf("invalid code point %q", s[1:end])
		}
		return rune(v), end + 1, nil
	}
	v, n, err := hexValue(s, 4)
	return rune(v), n, err
}

func hexValue(s string, digits int) (int, int, error) {
	if len(s) < digits {
		return 0, 0, fmt.Errorf("want %d hex digits", digits)
	}
	v := 0
	for i := 0; i < digits; i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v = v*16 + int(c-'0')
		case c >= 'a' && c <= 'f':
			v = v*16 + int(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v*16 + int(c-'A'+10)
		default:
			return 0, 0, fmt.Errorf("invalid hex digit %q", c)
		}
		if v > utf8.MaxRune {
			return 0, 0, fmt.Errorf("code point out of range")
		}
	}
	return v, digits, nil
}
