package api

import (
	"bytes"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/predictor"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

const (
	// DownloadName is the file name offered for the classified batch
	DownloadName = "comentarios_classificados.csv"

	defaultComment = "O produto chegou no prazo e a qualidade é muito boa. Ficarei de olho em mais ofertas!"
	emptyWarning   = "Por favor, insira um comentário para análise."
	readError      = "Erro ao ler o arquivo. Verifique se o formato está correto (sep=';'). Erro: %v"
	columnError    = "Coluna selecionada não existe no arquivo."
	uploadField    = "arquivo"
	columnField    = "coluna"
)

type singleResult struct {
	Display string
	Tone    string
	Cleaned string
}

type batchResult struct {
	Filename     string
	Column       string
	Total        int
	Rows         [][3]string
	DownloadHref template.URL
	DownloadName string
}

type pageData struct {
	Comment string
	Single  *singleResult
	Warning string
	Batch   *batchResult
	Error   string
}

func (s *Server) render(c *gin.Context, status int, data pageData) {
	c.HTML(status, "index.html", data)
}

// handleIndex serves GET /
func (s *Server) handleIndex(c *gin.Context) {
	s.render(c, http.StatusOK, pageData{Comment: defaultComment})
}

// handleAnalyze serves POST /analisar, the single comment panel
func (s *Server) handleAnalyze(c *gin.Context) {
	comment := c.PostForm("comentario")
	data := pageData{Comment: comment}

	if strings.TrimSpace(comment) == "" {
		data.Warning = emptyWarning
		s.render(c, http.StatusOK, data)
		return
	}

	p, err := s.service.Predict(c.Request.Context(), comment)
	if err != nil {
		c.Error(err)
		data.Error = err.Error()
		s.render(c, http.StatusServiceUnavailable, data)
		return
	}

	data.Single = &singleResult{
		Display: p.Display(),
		Tone:    p.Category.Tone(),
		Cleaned: p.Cleaned,
	}
	s.render(c, http.StatusOK, data)
}

// handleBatchColumns serves POST /lote/colunas: the uploaded file's columns
// and the suggested text column.
func (s *Server) handleBatchColumns(c *gin.Context) {
	table, _, err := s.readUpload(c)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(readError, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"columns":   table.Columns,
		"suggested": predictor.SuggestTextColumn(table),
		"rows":      table.Len(),
	})
}

// handleBatch serves POST /lote: classify the chosen column of an uploaded
// file and offer the result as a CSV download.
func (s *Server) handleBatch(c *gin.Context) {
	data := pageData{Comment: defaultComment}

	table, filename, err := s.readUpload(c)
	if err != nil {
		c.Error(err)
		data.Error = fmt.Sprintf(readError, err)
		s.render(c, http.StatusBadRequest, data)
		return
	}

	column := c.PostForm(columnField)
	if column == "" {
		column = predictor.SuggestTextColumn(table)
	}

	out, err := s.service.PredictBatch(c.Request.Context(), table, column)
	if errors.Is(err, predictor.ErrColumnNotFound) {
		data.Error = columnError
		s.render(c, http.StatusBadRequest, data)
		return
	}
	if err != nil {
		c.Error(err)
		data.Error = err.Error()
		s.render(c, http.StatusServiceUnavailable, data)
		return
	}

	var csv bytes.Buffer
	if err := dataset.Write(&csv, out, ','); err != nil {
		c.Error(err)
		data.Error = err.Error()
		s.render(c, http.StatusInternalServerError, data)
		return
	}

	data.Batch = &batchResult{
		Filename:     filename,
		Column:       column,
		Total:        out.Len(),
		Rows:         previewRows(out, column),
		DownloadHref: template.URL("data:text/csv;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(csv.Bytes())),
		DownloadName: DownloadName,
	}
	s.render(c, http.StatusOK, data)
}

// readUpload parses the multipart file field as a delimited table
func (s *Server) readUpload(c *gin.Context) (*dataset.Table, string, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		return nil, "", fmt.Errorf("missing upload field %q: %w", uploadField, err)
	}

	table, err := readMultipart(header, dataset.Options{
		Delimiter: dataset.ParseDelimiter(s.config.Data.BatchDelimiter),
		Encoding:  s.config.Data.BatchEncoding,
	})
	if err != nil {
		return nil, header.Filename, err
	}
	return table, header.Filename, nil
}

func readMultipart(header *multipart.FileHeader, opts dataset.Options) (*dataset.Table, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return dataset.Read(file, opts)
}

// previewRows picks the text, display and label columns for the result table
func previewRows(out *dataset.Table, column string) [][3]string {
	texts, _ := out.Column(column)
	display, _ := out.Column(predictor.ColumnResult)
	labels, _ := out.Column(predictor.ColumnPrediction)

	rows := make([][3]string, out.Len())
	for i := range rows {
		rows[i] = [3]string{texts[i], display[i], labels[i]}
	}
	return rows
}
