package corpus

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/zpam/sentimento/pkg/dataset"
)

// Generator produces synthetic raw reviews for smoke tests and benchmarks.
// The same seed always yields the same table.
type Generator struct {
	rand *rand.Rand

	// Fraction of rows emitted with an empty comment or score
	MissingRatio float64

	openers   map[int][]string
	details   map[int][]string
	closers   map[int][]string
	products  []string
	modifiers []string
}

// NewGenerator creates a generator seeded with seed
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rand: rand.New(rand.NewSource(seed)),

		openers: map[int][]string{
			1: {"Péssimo", "Horrível", "Não recomendo", "Decepcionante", "Uma vergonha"},
			2: {"Ruim", "Fraco", "Não gostei", "Abaixo do esperado", "Deixou a desejar"},
			3: {"Razoável", "Mais ou menos", "Regular", "Nada demais", "Cumpre o básico"},
			4: {"Bom", "Gostei", "Bem feito", "Satisfeito", "Recomendo"},
			5: {"Excelente", "Perfeito", "Maravilhoso", "Adorei", "Sensacional"},
		},
		details: map[int][]string{
			1: {"chegou quebrado", "nunca foi entregue", "o suporte não respondeu", "veio errado e sem peças", "parou de funcionar no primeiro dia"},
			2: {"atrasou bastante", "a embalagem estava amassada", "qualidade inferior à foto", "demorou para chegar", "faltou o manual"},
			3: {"chegou no prazo", "a qualidade é mediana", "o preço poderia ser menor", "a cor é um pouco diferente", "funciona mas é barulhento"},
			4: {"chegou antes do prazo", "boa qualidade pelo preço", "embalagem caprichada", "atendimento atencioso", "funciona bem"},
			5: {"chegou rápido e bem embalado", "qualidade impecável", "superou minhas expectativas", "atendimento nota dez", "vale cada centavo"},
		},
		closers: map[int][]string{
			1: {"Quero meu dinheiro de volta!", "Nunca mais compro aqui.", "Fujam!", ""},
			2: {"Não compraria de novo.", "Esperava mais.", ""},
			3: {"Dá para usar.", "Talvez compre de novo.", ""},
			4: {"Compraria novamente.", "Recomendo a loja.", ""},
			5: {"Recomendo muito!!!", "Comprarei sempre!", "Nota 10!", ""},
		},
		products: []string{
			"o produto", "o celular", "a cafeteira", "o fone", "a camiseta",
			"o livro", "a mochila", "o carregador", "a panela", "o tênis",
		},
		modifiers: []string{"", "", "muito ", "realmente ", "bem "},
	}
}

// Review returns one comment for score (1..5)
func (g *Generator) Review(score int) string {
	opener := g.choice(g.openers[score])
	detail := g.choice(g.details[score])
	closer := g.choice(g.closers[score])

	var b strings.Builder
	b.WriteString(opener)
	b.WriteString(", ")
	b.WriteString(g.choice(g.modifiers))
	b.WriteString(g.choice(g.products))
	b.WriteString(" ")
	b.WriteString(detail)
	b.WriteString(".")
	if closer != "" {
		b.WriteString(" ")
		b.WriteString(closer)
	}

	text := b.String()
	if g.rand.Intn(8) == 0 {
		text = strings.ToUpper(text)
	}
	return text
}

// Table builds count raw rows with the given column names. Scores are drawn
// uniformly from 1..5.
func (g *Generator) Table(count int, textColumn, labelColumn string) *dataset.Table {
	table := dataset.NewTable(textColumn, labelColumn)
	table.Rows = make([][]string, 0, count)

	for i := 0; i < count; i++ {
		score := g.rand.Intn(5) + 1
		row := []string{g.Review(score), strconv.Itoa(score)}

		if g.MissingRatio > 0 && g.rand.Float64() < g.MissingRatio {
			row[g.rand.Intn(2)] = ""
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func (g *Generator) choice(options []string) string {
	return options[g.rand.Intn(len(options))]
}
