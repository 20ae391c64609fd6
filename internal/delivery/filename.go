package delivery

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxBaseNameLength caps sanitized file base names.
const maxBaseNameLength = 120

// defaultDownloadName is the last-resort attachment name.
const defaultDownloadName = "download.file"

// SanitizeBaseName strips path-hostile and control characters from a file
// base name, collapses whitespace and caps the length. An unusable input
// comes back as the empty string so callers can pick their own fallback.
func SanitizeBaseName(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r < 0x20 || r == 0x7F:
			b.WriteByte(' ')
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")

	runes := []rune(cleaned)
	if len(runes) > maxBaseNameLength {
		runes = runes[:maxBaseNameLength]
	}
	return strings.TrimSpace(string(runes))
}

// BuildContentDisposition renders an attachment header with both an
// ASCII-folded fallback name and a percent-encoded UTF-8 extended parameter,
// so non-ASCII titles survive across browsers.
func BuildContentDisposition(fileName string) string {
	safe := SanitizeBaseName(fileName)
	if safe == "" {
		safe = defaultDownloadName
	}

	ascii := asciiFold(safe)
	if ascii == "" {
		ascii = defaultDownloadName
	}

	return `attachment; filename="` + ascii + `"; filename*=UTF-8''` + encodeRFC5987(safe)
}

// asciiFold decomposes the name and keeps only printable ASCII, minus quote
// and semicolon which would break the quoted-string form.
func asciiFold(value string) string {
	decomposed := norm.NFKD.String(value)

	var b strings.Builder
	for _, r := range decomposed {
		if r < 0x20 || r > 0x7E || r == '"' || r == ';' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// encodeRFC5987 percent-encodes a value for the filename* parameter. Only
// attr-char bytes stay literal.
func encodeRFC5987(value string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(value); i++ {
		c := value[i]
		if isAttrChar(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func isAttrChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '&', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// SanitizeFileExtension reduces an extension to lowercase alphanumerics,
// folds jpeg to jpg and caps the length.
func SanitizeFileExtension(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	ext := b.String()
	if ext == "" {
		return ""
	}
	if ext == "jpeg" {
		return "jpg"
	}
	if len(ext) > 8 {
		ext = ext[:8]
	}
	return ext
}

// ExtensionFromContentType maps an image content type to a file extension.
func ExtensionFromContentType(contentType string) string {
	normalized := strings.ToLower(contentType)
	switch {
	case strings.Contains(normalized, "image/jpeg"), strings.Contains(normalized, "image/jpg"):
		return "jpg"
	case strings.Contains(normalized, "image/png"):
		return "png"
	case strings.Contains(normalized, "image/webp"):
		return "webp"
	case strings.Contains(normalized, "image/avif"):
		return "avif"
	}
	return ""
}

// ContentTypeFromExtension maps a sanitized extension to an image content type.
func ContentTypeFromExtension(ext string) string {
	switch SanitizeFileExtension(ext) {
	case "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	}
	return ""
}

// fileExtensionFromURL pulls a sanitized extension out of a URL path.
func fileExtensionFromURL(value string) string {
	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}

	path := parsed.Path
	dot := strings.LastIndexByte(path, '.')
	if dot < 0 || dot == len(path)-1 {
		return ""
	}
	return SanitizeFileExtension(path[dot+1:])
}
