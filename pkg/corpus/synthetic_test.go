package corpus

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/textnorm"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(7).Table(50, "comentario", "classificacao")
	b := NewGenerator(7).Table(50, "comentario", "classificacao")
	c := NewGenerator(8).Table(50, "comentario", "classificacao")

	assert.Equal(t, a.Rows, b.Rows)
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestGeneratorTable(t *testing.T) {
	table := NewGenerator(1).Table(200, "comentario", "classificacao")

	assert.Equal(t, []string{"comentario", "classificacao"}, table.Columns)
	require.Equal(t, 200, table.Len())

	for _, row := range table.Rows {
		assert.NotEmpty(t, row[0])
		score, err := strconv.Atoi(row[1])
		require.NoError(t, err)
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 5)
	}
}

func TestGeneratorMissingRowsAreDroppedByPrepare(t *testing.T) {
	gen := NewGenerator(3)
	gen.MissingRatio = 0.3
	raw := gen.Table(300, "comentario", "classificacao")

	missing := 0
	for _, row := range raw.Rows {
		if row[0] == "" || row[1] == "" {
			missing++
		}
	}
	assert.Greater(t, missing, 0)

	opts := OptionsFromConfig(config.DefaultConfig())
	prepared, report, err := PrepareTable(context.Background(), raw, opts, textnorm.Default())
	require.NoError(t, err)
	assert.Equal(t, missing, report.RowsDropped)
	assert.Equal(t, 300-missing, prepared.Len())
}
