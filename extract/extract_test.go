package extract_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/warp/sport-bonus/extract"
	"github.com/warp/sport-bonus/generic"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRead_Latin1Semicolon(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("ID salarié;Salaire brut;Moyen de déplacement\nA1;3000;Vélo\nB2;2500,50;Marche\n")
	require.NoError(t, err)
	path := writeFile(t, "hr.csv", []byte(raw))

	table, stats, err := extract.Read(context.Background(), extract.Source{
		Name: "hr", Path: path, Delimiter: ';', Encoding: "latin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ID salarié", "Salaire brut", "Moyen de déplacement"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"A1", "3000", "Vélo"}, table.Rows[0])
	assert.Equal(t, "2500,50", table.Rows[1][1])
	assert.Equal(t, 2, table.Line(0))
	assert.Equal(t, 3, table.Line(1))
	assert.Equal(t, 2, stats.Rows)
	assert.Zero(t, stats.Skipped)
}

func TestRead_UTF8WithBOM(t *testing.T) {
	path := writeFile(t, "act.csv", []byte("\ufeffemployee_id,activity_type\na1,Course\n"))

	table, _, err := extract.Read(context.Background(), extract.Source{Name: "activities", Path: path, Delimiter: ',', Encoding: "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "employee_id", table.Columns[0])
}

func TestRead_SkipsMalformedLines(t *testing.T) {
	path := writeFile(t, "act.csv", []byte("id,type\na1,Course\nbroken\na2,Velo,extra\n\na3,Marche\n"))

	table, stats, err := extract.Read(context.Background(), extract.Source{Name: "activities", Path: path, Delimiter: ','})
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "a3", table.Rows[1][0])
	assert.Equal(t, 6, table.Line(1))
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, []int{3, 4}, stats.SkippedLines)
}

func TestRead_MissingFile(t *testing.T) {
	_, _, err := extract.Read(context.Background(), extract.Source{
		Name: "hr", Path: filepath.Join(t.TempDir(), "nope.csv"), Delimiter: ';',
	})
	require.Error(t, err)

	var nf *generic.SourceNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "hr", nf.Source)
	assert.ErrorIs(t, err, generic.ErrSourceNotFound)
	assert.Equal(t, 2, generic.ExitCode(err))
}

func TestRead_UnknownEncoding(t *testing.T) {
	path := writeFile(t, "x.csv", []byte("a\n1\n"))
	_, _, err := extract.Read(context.Background(), extract.Source{Name: "x", Path: path, Encoding: "ebcdic"})
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestDecode_EmptyInput(t *testing.T) {
	_, _, err := extract.Decode(context.Background(), extract.Source{Name: "hr"}, strings.NewReader(""))
	assert.ErrorContains(t, err, "no header line")
}

func TestDecode_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := extract.Decode(ctx, extract.Source{Name: "hr"}, strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEncoding_Aliases(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "latin1", "ISO-8859-1", "cp1252", "windows-1252"} {
		_, err := extract.Encoding(name)
		assert.NoError(t, err, name)
	}
}
