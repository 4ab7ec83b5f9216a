// Package dataset loads the crop reference table from disk.
//
// The file's encoding is unknown upfront: datasets in the wild arrive as
// UTF-8, GBK, UTF-16, or UTF-8 with a BOM. Load tries a fixed ordered chain
// of decoders and takes the first that both decodes cleanly and parses as
// CSV, recording a diagnostic per failed attempt instead of swallowing it.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/couchcryptid/crop-advisor-service/internal/domain"
)

// ErrDataUnavailable signals that the dataset could not be read under any
// supported encoding. This is fatal to the session: there is nothing to
// train on and no partial result is returned.
var ErrDataUnavailable = errors.New("dataset unavailable")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// codec is one entry in the fallback chain.
type codec struct {
	name   string
	decode func([]byte) (string, error)
}

// codecs are tried in this exact order. UTF-8 comes first and rejects BOMs so
// that utf-8-sig, last in the chain, is the one that claims BOM-prefixed
// files.
var codecs = []codec{
	{"utf-8", decodeUTF8},
	{"gbk", decodeGBK},
	{"utf-16", decodeUTF16},
	{"utf-8-sig", decodeUTF8Sig},
}

// Load reads the dataset at path. On success every header is normalized
// (whitespace trimmed, space and parenthesis characters removed). On failure
// of every attempt it returns an error wrapping ErrDataUnavailable that
// names each encoding tried and why it was rejected.
func Load(path string, logger *slog.Logger) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, path, err)
	}

	var diagnostics []string
	for _, c := range codecs {
		text, err := c.decode(data)
		if err != nil {
			diagnostics = append(diagnostics, c.name+": "+err.Error())
			logger.Debug("encoding attempt failed", "encoding", c.name, "error", err)
			continue
		}

		tbl, err := parseCSV(text)
		if err != nil {
			diagnostics = append(diagnostics, c.name+": "+err.Error())
			logger.Debug("csv parse failed", "encoding", c.name, "error", err)
			continue
		}

		logger.Info("dataset loaded",
			"path", path,
			"encoding", c.name,
			"records", len(tbl.Rows),
			"columns", len(tbl.Headers),
		)
		return tbl, nil
	}

	return nil, fmt.Errorf("%w: %s: %s", ErrDataUnavailable, path, strings.Join(diagnostics, "; "))
}

func parseCSV(text string) (*domain.Table, error) {
	reader := csv.NewReader(strings.NewReader(text))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, errors.New("no data rows")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = NormalizeHeader(h)
	}

	rows := make([]domain.Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(domain.Row, len(headers))
		for i, cell := range rec {
			row[headers[i]] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}

	return &domain.Table{Headers: headers, Rows: rows}, nil
}

var headerStripper = strings.NewReplacer(" ", "", "(", "", ")", "", "（", "", "）", "")

// NormalizeHeader trims surrounding whitespace and removes space and
// parenthesis characters (ASCII and full-width), so " 降雨 (mm)" → "降雨mm".
func NormalizeHeader(h string) string {
	return headerStripper.Replace(strings.TrimSpace(h))
}

func decodeUTF8(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return "", errors.New("leading byte order mark")
	}
	if !utf8.Valid(data) {
		return "", errors.New("invalid utf-8 sequence")
	}
	return string(data), nil
}

func decodeUTF8Sig(data []byte) (string, error) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", errors.New("missing byte order mark")
	}
	rest := bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(rest) {
		return "", errors.New("invalid utf-8 sequence after BOM")
	}
	return string(rest), nil
}

func decodeGBK(data []byte) (string, error) {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode gbk: %w", err)
	}
	// The decoder substitutes U+FFFD for unmappable bytes rather than
	// erroring; treat any substitution as a failed attempt.
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", errors.New("unmappable gbk byte sequence")
	}
	// GBK happily decodes the NUL padding of UTF-16 text; reject it so the
	// utf-16 attempt further down the chain gets its turn.
	if bytes.IndexByte(decoded, 0x00) >= 0 {
		return "", errors.New("embedded NUL byte")
	}
	return string(decoded), nil
}

func decodeUTF16(data []byte) (string, error) {
	// Require a BOM, matching the strictness of the original chain: without
	// one there is no way to tell byte order apart from mojibake.
	if len(data) < 2 || len(data)%2 != 0 {
		return "", errors.New("length not a multiple of two")
	}
	hasBOM := (data[0] == 0xFF && data[1] == 0xFE) || (data[0] == 0xFE && data[1] == 0xFF)
	if !hasBOM {
		return "", errors.New("missing byte order mark")
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	decoded, err := dec.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode utf-16: %w", err)
	}
	if bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", errors.New("invalid utf-16 sequence")
	}
	return string(decoded), nil
}
