package corpus

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/textnorm"
)

const rawCSV = `id;comentario;classificacao;uf
1;O produto EXCELENTE, chegou rápido!!!;5;SP
2;;4;RJ
3;Péssimo atendimento;NaN;MG
4;   ;3;BA
5;Entrega   no prazo;4.0;PR
6;o que é isso;2;SC
7;NA;1;RS
`

func testOptions(dir string) Options {
	opts := OptionsFromConfig(config.DefaultConfig())
	opts.InputPath = filepath.Join(dir, "raw.csv")
	opts.OutputPath = filepath.Join(dir, "out", "prepared.csv")
	return opts
}

func TestPrepare(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	require.NoError(t, os.WriteFile(opts.InputPath, []byte(rawCSV), 0644))

	report, err := Prepare(context.Background(), opts, textnorm.Default())
	require.NoError(t, err)

	assert.Equal(t, 7, report.RowsRead)
	assert.Equal(t, 4, report.RowsDropped)
	assert.Equal(t, 3, report.RowsWritten)
	assert.Equal(t, 1, report.EmptyAfter)
	assert.Equal(t, opts.OutputPath, report.OutputPath)

	data, err := os.ReadFile(opts.OutputPath)
	require.NoError(t, err)
	assert.Equal(t,
		"classificacao,Texto_Processado\n"+
			"5,produto excelente chegou rpido\n"+
			"4,entrega prazo\n"+
			"2,\n",
		string(data))
}

func TestPrepareSample(t *testing.T) {
	table := dataset.NewTable("comentario", "classificacao")
	for i := 0; i < 8; i++ {
		table.Rows = append(table.Rows, []string{"Muito bom produto", "5"})
	}

	opts := OptionsFromConfig(config.DefaultConfig())
	out, report, err := PrepareTable(context.Background(), table, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, 8, out.Len())
	require.Len(t, report.Sample, DefaultSampleSize)
	assert.Equal(t, "Muito bom produto", report.Sample[0].Original)
	assert.Equal(t, "bom produto", report.Sample[0].Processed)

	var buf bytes.Buffer
	report.Print(&buf)
	assert.Contains(t, buf.String(), "Rows written: 8")
	assert.Contains(t, buf.String(), `"bom produto"`)
}

func TestPrepareMissingColumnWritesNothing(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	// comma separated file read with ';' has a single column
	require.NoError(t, os.WriteFile(opts.InputPath, []byte("comentario,classificacao\nbom,5\n"), 0644))

	_, err := Prepare(context.Background(), opts, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)

	_, statErr := os.Stat(opts.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPrepareMissingInput(t *testing.T) {
	opts := testOptions(t.TempDir())
	_, err := Prepare(context.Background(), opts, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrepareBadEncoding(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(dir)
	latin, err := dataset.EncodeLatin1("comentario;classificacao\nÓtimo;5\n")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(opts.InputPath, latin, 0644))

	_, err = Prepare(context.Background(), opts, nil)
	assert.Error(t, err)

	opts.Encoding = "latin-1"
	report, err := Prepare(context.Background(), opts, nil)
	require.NoError(t, err)
	assert.Equal(t, "timo", report.Sample[0].Processed)
}

func TestPrepareCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table := dataset.NewTable("comentario", "classificacao")
	table.Rows = [][]string{{"bom", "5"}}

	_, _, err := PrepareTable(ctx, table, OptionsFromConfig(config.DefaultConfig()), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCanonicalLabel(t *testing.T) {
	tests := map[string]string{
		"5":    "5",
		"5.0":  "5",
		" 3 ":  "3",
		"4.5":  "4.5",
		"bom":  "bom",
		"-1.0": "-1",
		"1e0":  "1",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, CanonicalLabel(in), "label %q", in)
	}
}
