/*
Package extract reads the raw delimited sources into generic.Tables.

PURPOSE:
  HR and activity exports come from different tools: the HR file is
  semicolon-separated latin-1, the activity log comma-separated utf-8.
  Each Source carries its own delimiter and encoding; everything is decoded
  to utf-8 before parsing.

MALFORMED LINES:
  A line whose field count differs from the header is skipped and counted
  rather than aborting the read. Stats reports how many and where.

ENCODINGS:
  utf-8 (BOM stripped), latin-1 / iso-8859-1, windows-1252 / cp1252.

SEE ALSO:
  - generic/table.go: Output type
  - generic/errors.go: SourceNotFoundError
*/
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/warp/sport-bonus/generic"
)

// Source describes one input file.
type Source struct {
	Name      string // logical name used in errors and logs, e.g. "hr"
	Path      string
	Delimiter rune
	Encoding  string
}

// Stats describes what a read kept and dropped.
type Stats struct {
	Rows         int
	Skipped      int
	SkippedLines []int
}

// maxSkippedLines bounds the line numbers kept in Stats.
const maxSkippedLines = 50

// Encoding returns the text encoding registered under name.
func Encoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1", "iso_8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Read loads src into a Table. A missing file yields *generic.SourceNotFoundError.
func Read(ctx context.Context, src Source) (generic.Table, Stats, error) {
	enc, err := Encoding(src.Encoding)
	if err != nil {
		return generic.Table{}, Stats{}, fmt.Errorf("source %q: %w", src.Name, err)
	}

	f, err := os.Open(src.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return generic.Table{}, Stats{}, &generic.SourceNotFoundError{Source: src.Name, Path: src.Path, Err: err}
		}
		return generic.Table{}, Stats{}, fmt.Errorf("open source %q: %w", src.Name, err)
	}
	defer f.Close()

	return Decode(ctx, src, enc.NewDecoder().Reader(f))
}

// Decode parses already-opened, already-decoded input.
func Decode(ctx context.Context, src Source, r io.Reader) (generic.Table, Stats, error) {
	cr := csv.NewReader(r)
	cr.Comma = src.Delimiter
	if cr.Comma == 0 {
		cr.Comma = ','
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return generic.Table{}, Stats{}, fmt.Errorf("source %q (%s) has no header line", src.Name, src.Path)
		}
		return generic.Table{}, Stats{}, fmt.Errorf("read header of source %q: %w", src.Name, err)
	}

	table := generic.NewTable(src.Name, header)
	var stats Stats
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return generic.Table{}, stats, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line, _ := cr.FieldPos(0)
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			stats.skip(perr.StartLine)
			continue
		}
		if err != nil {
			return generic.Table{}, stats, fmt.Errorf("read source %q: %w", src.Name, err)
		}
		if len(rec) != len(header) {
			stats.skip(line)
			continue
		}
		table.Append(line, rec)
		stats.Rows++
	}
	return table, stats, nil
}

func (s *Stats) skip(line int) {
	s.Skipped++
	if len(s.SkippedLines) < maxSkippedLines {
		s.SkippedLines = append(s.SkippedLines, line)
	}
}
