package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSemicolonUTF8(t *testing.T) {
	input := "\ufeffcomentario;classificacao\nÓtimo produto;5\n\"Ruim; veio quebrado\";1\n"

	table, err := Read(strings.NewReader(input), Options{Delimiter: ';', Encoding: "utf-8"})
	require.NoError(t, err)

	assert.Equal(t, []string{"comentario", "classificacao"}, table.Columns)
	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Ótimo produto", "5"}, table.Rows[0])
	assert.Equal(t, "Ruim; veio quebrado", table.Rows[1][0])
}

func TestReadLatin1(t *testing.T) {
	raw, err := EncodeLatin1("texto;nota\nCafé excelente;5\n")
	require.NoError(t, err)

	table, err := Read(bytes.NewReader(raw), Options{Delimiter: ';', Encoding: "latin-1"})
	require.NoError(t, err)
	assert.Equal(t, "Café excelente", table.Rows[0][0])

	_, err = Read(bytes.NewReader(raw), Options{Delimiter: ';', Encoding: "utf-8"})
	assert.Error(t, err)
}

func TestReadAutoEncoding(t *testing.T) {
	latin, err := EncodeLatin1("texto\nAção\n")
	require.NoError(t, err)

	table, err := Read(bytes.NewReader(latin), Options{Delimiter: ';', Encoding: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "Ação", table.Rows[0][0])

	table, err = Read(strings.NewReader("texto\nAção\n"), Options{Delimiter: ';', Encoding: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "Ação", table.Rows[0][0])
}

func TestReadUnsupportedEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("a\n1\n"), Options{Encoding: "utf-16"})
	assert.Error(t, err)
}

func TestReadShortAndLongRows(t *testing.T) {
	table, err := Read(strings.NewReader("a,b,c\n1\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "", ""}, table.Rows[0])

	_, err = Read(strings.NewReader("a,b\n1,2,3\n"), DefaultOptions())
	assert.Error(t, err)
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""), DefaultOptions())
	assert.Error(t, err)

	table, err := Read(strings.NewReader("only,header\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestDuplicateColumns(t *testing.T) {
	table, err := Read(strings.NewReader("x,x,y,x\n1,2,3,4\n"), DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x.1", "y", "x.2"}, table.Columns)
}

func TestColumnLookup(t *testing.T) {
	table := NewTable("a", "b")
	table.Rows = [][]string{{"1", "2"}, {"3", "4"}}

	values, err := table.Column("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, values)

	_, err = table.Column("missing")
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.False(t, table.HasColumn("missing"))
}

func TestSetColumnAppendsAndReplaces(t *testing.T) {
	table := NewTable("a")
	table.Rows = [][]string{{"1"}, {"2"}}

	require.NoError(t, table.SetColumn("b", []string{"x", "y"}))
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	assert.Equal(t, []string{"2", "y"}, table.Rows[1])

	require.NoError(t, table.SetColumn("a", []string{"9", "8"}))
	assert.Equal(t, []string{"9", "x"}, table.Rows[0])

	assert.Error(t, table.SetColumn("c", []string{"only one"}))
}

func TestSelectAndClone(t *testing.T) {
	table := NewTable("a", "b", "c")
	table.Rows = [][]string{{"1", "2", "3"}}

	sel, err := table.Select("c", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, sel.Columns)
	assert.Equal(t, []string{"3", "1"}, sel.Rows[0])

	clone := table.Clone()
	clone.Rows[0][0] = "changed"
	assert.Equal(t, "1", table.Rows[0][0])

	_, err = table.Select("nope")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "NaN", "nan", "NA", "N/A", "null", "NULL", "None", "<NA>"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{" ", "0", "none", "texto"} {
		assert.False(t, IsMissing(v), v)
	}
	assert.True(t, IsBlank("   "))
	assert.False(t, IsBlank("a"))
}

func TestSuggestTextColumn(t *testing.T) {
	tests := []struct {
		name     string
		columns  []string
		rows     [][]string
		expected string
	}{
		{
			name:     "skips numeric and short columns",
			columns:  []string{"id", "uf", "comentario"},
			rows:     [][]string{{"1", "SP", "Chegou antes do prazo"}, {"2", "RJ", "Muito bom mesmo"}},
			expected: "comentario",
		},
		{
			name:     "falls back to first column",
			columns:  []string{"nota", "uf"},
			rows:     [][]string{{"5", "SP"}},
			expected: "nota",
		},
		{
			name:     "missing values ignored in mean",
			columns:  []string{"texto"},
			rows:     [][]string{{""}, {"NaN"}, {"produto excelente"}},
			expected: "texto",
		},
		{
			name:     "long numbers are not text",
			columns:  []string{"cpf", "obs"},
			rows:     [][]string{{"12345678901", "entrega atrasada"}},
			expected: "obs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewTable(tt.columns...)
			table.Rows = tt.rows
			assert.Equal(t, tt.expected, table.SuggestTextColumn())
		})
	}

	assert.Equal(t, "", NewTable().SuggestTextColumn())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.csv")

	table := NewTable("classificacao", "Texto_Processado")
	table.Rows = [][]string{{"5", "produto excelente"}, {"1", "veio, quebrado"}}

	require.NoError(t, WriteFile(path, table, ','))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "classificacao,Texto_Processado\n5,produto excelente\n1,\"veio, quebrado\"\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	back, err := ReadFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, table.Rows, back.Rows)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), DefaultOptions())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
