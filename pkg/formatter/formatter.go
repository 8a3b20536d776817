package formatter

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// FormatNumber converts an integer to a string with commas as thousands separators.
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}

	le := len(s)
	if le <= 3 {
		if n < 0 {
			return "-" + s
		}
		return s
	}

	sepCount := (le - 1) / 3

	res := make([]byte, le+sepCount)

	j := len(res) - 1
	for i := le - 1; i >= 0; i-- {
		res[j] = s[i]
		j--
		if (le-i)%3 == 0 && i > 0 {
			res[j] = ','
			j--
		}
	}

	if n < 0 {
		return "-" + string(res)
	}
	return string(res)
}

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	collapseRuns     = regexp.MustCompile(`[_\s]+`)
)

// SanitizeFolderName removes characters that can break directory creation.
func SanitizeFolderName(value string) string {
	value = strings.ReplaceAll(value, "/", "_")
	return strings.ReplaceAll(value, "\\", "_")
}

// SanitizeTitle makes a post title safe for use in a directory name.
// Invalid characters become underscores and trailing dots are stripped.
func SanitizeTitle(unsanitized string) string {
	if unsanitized == "" {
		return ""
	}

	title := unsanitized
	for _, c := range `<>:"/\|?*.` {
		title = strings.ReplaceAll(title, string(c), "_")
	}
	title = strings.TrimSpace(title)
	title = strings.TrimRight(title, ".")

	return title
}

// AdaptFileName sanitizes a file name (without extension) for disk use.
// URL-encoded names are decoded first; the result is limited to 50 UTF-8 bytes.
func AdaptFileName(name string) string {
	if name == "" {
		return ""
	}

	decoded, err := url.QueryUnescape(name)
	if err != nil {
		decoded = name
	}

	ext := path.Ext(decoded)
	base := strings.TrimSuffix(decoded, ext)

	base = invalidNameChars.ReplaceAllString(base, "_")
	base = collapseRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_ ")

	for len(base) > 50 {
		r := []rune(base)
		base = string(r[:len(r)-1])
	}

	if base == "" {
		base = "unknown_filename"
	}
	return base
}

// FileExtension picks the on-disk extension for an attachment: the original
// name's extension when present, otherwise the URL path's, otherwise ".bin".
// ".jpeg" is normalized to ".jpg".
func FileExtension(originalName, rawURL string) string {
	ext := path.Ext(originalName)
	if ext == "" {
		if u, err := url.Parse(rawURL); err == nil {
			ext = path.Ext(u.Path)
		}
	}
	if ext == "" {
		ext = ".bin"
	}
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	return ext
}

// AttachmentFileName builds the final unique on-disk name for the idx-th
// (1-based) attachment of a post.
func AttachmentFileName(idx int, originalName, rawURL string) string {
	base := AdaptFileName(originalName)
	if base == "" {
		return strconv.Itoa(idx) + FileExtension(originalName, rawURL)
	}
	return strconv.Itoa(idx) + "-" + base + FileExtension(originalName, rawURL)
}
