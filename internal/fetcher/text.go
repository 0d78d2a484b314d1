package fetcher

import (
	"bytes"
	"io"
	"os"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadText decodes a text document to UTF-8. charset is a WHATWG label such
// as "windows-1252"; when empty, a byte-order mark selects UTF-16 and the
// content must otherwise be valid UTF-8.
func ReadText(r io.Reader, charset string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", eris.Wrap(err, "text: read")
	}

	if charset != "" {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return "", eris.Wrapf(err, "text: unsupported charset %q", charset)
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", eris.Wrapf(err, "text: decode %s", charset)
		}
		return string(bytes.TrimPrefix(out, bomUTF8)), nil
	}

	if bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE) {
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return "", eris.Wrap(err, "text: decode utf-16")
		}
		return string(out), nil
	}

	data = bytes.TrimPrefix(data, bomUTF8)
	if !utf8.Valid(data) {
		return "", eris.Wrap(ErrUnsupportedFormat, "text: content is not valid UTF-8")
	}
	return string(data), nil
}

// ReadTextFile opens path and decodes it with ReadText.
func ReadTextFile(path, charset string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "text: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadText(f, charset)
}
