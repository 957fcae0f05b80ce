package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"

	"github.com/ternarybob/nuntius/internal/archive"
)

const (
	summarySheet = "Summary"
	allNewsSheet = "All_News"

	// Excel caps sheet names at 31 characters
	maxSheetName = 31
)

// articleColumns is the column layout of the article sheets.
var articleColumns = []struct {
	Header string
	Width  float64
	Value  func(*archive.Record) interface{}
}{
	{"publishedAt", 20, func(r *archive.Record) interface{} { return r.PublishedAt }},
	{"Ticker", 8, func(r *archive.Record) interface{} { return r.Ticker }},
	{"source", 25, func(r *archive.Record) interface{} { return r.Source }},
	{"author", 20, func(r *archive.Record) interface{} { return r.Author }},
	{"title", 50, func(r *archive.Record) interface{} { return r.Title }},
	{"description", 70, func(r *archive.Record) interface{} { return r.Description }},
	{"sentiment_score", 16, func(r *archive.Record) interface{} {
		if r.SentimentScore == nil {
			return nil
		}
		return *r.SentimentScore
	}},
	{"sentiment_label", 16, func(r *archive.Record) interface{} { return r.SentimentLabel }},
	{"url", 50, func(r *archive.Record) interface{} { return r.URL }},
	// Remaining archive columns, in archive order, after the preferred set
	{"content_snippet", 50, func(r *archive.Record) interface{} { return r.Content }},
	{"NewsID", 20, func(r *archive.Record) interface{} { return r.NewsID }},
	{"ArticleKey", 20, func(r *archive.Record) interface{} { return r.ArticleKey }},
}

// summaryColumns is the column layout of the summary sheet.
var summaryColumns = []struct {
	Header string
	Width  float64
	Value  func(*TickerSummary) interface{}
}{
	{"Ticker", 8, func(s *TickerSummary) interface{} { return s.Ticker }},
	{"article_count_1d", 16, func(s *TickerSummary) interface{} { return s.Count1d }},
	{"article_count_7d", 16, func(s *TickerSummary) interface{} { return s.Count7d }},
	{"article_count_30d", 18, func(s *TickerSummary) interface{} { return s.Count30d }},
	{"article_count_total", 18, func(s *TickerSummary) interface{} { return s.CountTotal }},
	{"avg_sentiment_1d", 16, func(s *TickerSummary) interface{} { return derefOrNil(s.Avg1d) }},
	{"avg_sentiment_7d", 16, func(s *TickerSummary) interface{} { return derefOrNil(s.Avg7d) }},
	{"avg_sentiment_30d", 18, func(s *TickerSummary) interface{} { return derefOrNil(s.Avg30d) }},
	{"avg_sentiment_total", 18, func(s *TickerSummary) interface{} { return derefOrNil(s.AvgTotal) }},
	{"positive_total", 16, func(s *TickerSummary) interface{} { return s.PositiveTotal }},
	{"neutral_total", 16, func(s *TickerSummary) interface{} { return s.NeutralTotal }},
	{"negative_total", 18, func(s *TickerSummary) interface{} { return s.NegativeTotal }},
}

// Exporter renders the archive as an Excel workbook.
type Exporter struct {
	path   string
	logger arbor.ILogger
}

// NewExporter creates an exporter writing to path.
func NewExporter(path string, logger arbor.ILogger) *Exporter {
	return &Exporter{
		path:   path,
		logger: logger,
	}
}

// Export writes the workbook: a Summary sheet, an All_News sheet with every
// row, and one sheet per ticker. Rows are sorted by ticker ascending, then
// publication timestamp descending (newest first).
func (e *Exporter) Export(records []archive.Record) error {
	if len(records) == 0 {
		if e.logger != nil {
			e.logger.Warn().Msg("Archive is empty, nothing to export")
		}
		return nil
	}

	sorted := make([]archive.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Ticker != sorted[j].Ticker {
			return sorted[i].Ticker < sorted[j].Ticker
		}
		return ParsePublishedAt(sorted[i].PublishedAt).After(ParsePublishedAt(sorted[j].PublishedAt))
	})

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return fmt.Errorf("failed to create styles: %w", err)
	}

	// Summary sheet replaces the default sheet so it opens first
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := e.writeSummarySheet(f, styles, BuildSummary(sorted)); err != nil {
		return err
	}

	if err := e.writeArticleSheet(f, styles, allNewsSheet, sorted); err != nil {
		return err
	}

	for _, ticker := range tickersInOrder(sorted) {
		var rows []archive.Record
		for i := range sorted {
			if sorted[i].Ticker == ticker {
				rows = append(rows, sorted[i])
			}
		}

		name := ticker
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		if err := e.writeArticleSheet(f, styles, name, rows); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	if e.logger != nil {
		e.logger.Info().
			Str("path", e.path).
			Int("rows", len(sorted)).
			Msg("Report exported")
	}

	return nil
}

// workbookStyles holds the shared style IDs for one workbook.
type workbookStyles struct {
	header   int
	normal   int
	wrapped  int
	positive int
	negative int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "808080", Style: 1},
		{Type: "right", Color: "808080", Style: 1},
		{Type: "top", Color: "808080", Style: 1},
		{Type: "bottom", Color: "808080", Style: 1},
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Border: border,
	})
	if err != nil {
		return nil, err
	}

	normal, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	wrapped, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	positive, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "008000"},
		Alignment: &excelize.Alignment{Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	negative, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "FF0000"},
		Alignment: &excelize.Alignment{Vertical: "top"},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	return &workbookStyles{
		header:   header,
		normal:   normal,
		wrapped:  wrapped,
		positive: positive,
		negative: negative,
	}, nil
}

func (e *Exporter) writeSummarySheet(f *excelize.File, styles *workbookStyles, summaries []TickerSummary) error {
	for col, column := range summaryColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(summarySheet, cell, column.Header); err != nil {
			return fmt.Errorf("failed to write summary header: %w", err)
		}
		if err := f.SetCellStyle(summarySheet, cell, cell, styles.header); err != nil {
			return fmt.Errorf("failed to style summary header: %w", err)
		}

		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(summarySheet, name, name, column.Width); err != nil {
			return fmt.Errorf("failed to set summary column width: %w", err)
		}
	}

	for row, summary := range summaries {
		for col, column := range summaryColumns {
			value := column.Value(&summary)
			if value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(summarySheet, cell, value); err != nil {
				return fmt.Errorf("failed to write summary row: %w", err)
			}
		}
	}

	return freezeHeader(f, summarySheet)
}

func (e *Exporter) writeArticleSheet(f *excelize.File, styles *workbookStyles, sheet string, rows []archive.Record) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	scoreCol := 0
	for col, column := range articleColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, column.Header); err != nil {
			return fmt.Errorf("failed to write header on %s: %w", sheet, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, styles.header); err != nil {
			return fmt.Errorf("failed to style header on %s: %w", sheet, err)
		}

		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, name, name, column.Width); err != nil {
			return fmt.Errorf("failed to set column width on %s: %w", sheet, err)
		}

		style := styles.normal
		if column.Header == "title" || column.Header == "description" {
			style = styles.wrapped
		}
		if len(rows) > 0 {
			top, _ := excelize.CoordinatesToCellName(col+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(col+1, len(rows)+1)
			if err := f.SetCellStyle(sheet, top, bottom, style); err != nil {
				return fmt.Errorf("failed to style column on %s: %w", sheet, err)
			}
		}

		if column.Header == "sentiment_score" {
			scoreCol = col + 1
		}
	}

	for rowIdx := range rows {
		for col, column := range articleColumns {
			value := column.Value(&rows[rowIdx])
			if value == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row on %s: %w", sheet, err)
			}
		}
	}

	// Color scores outside the neutral band
	if scoreCol > 0 && len(rows) > 0 {
		top, _ := excelize.CoordinatesToCellName(scoreCol, 2)
		bottom, _ := excelize.CoordinatesToCellName(scoreCol, len(rows)+1)
		area := top + ":" + bottom

		err := f.SetConditionalFormat(sheet, area, []excelize.ConditionalFormatOptions{
			{Type: "cell", Criteria: ">", Value: "0.05", Format: &styles.positive},
			{Type: "cell", Criteria: "<", Value: "-0.05", Format: &styles.negative},
		})
		if err != nil {
			return fmt.Errorf("failed to set conditional format on %s: %w", sheet, err)
		}
	}

	return freezeHeader(f, sheet)
}

func freezeHeader(f *excelize.File, sheet string) error {
	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		return fmt.Errorf("failed to freeze header on %s: %w", sheet, err)
	}
	return nil
}

func tickersInOrder(records []archive.Record) []string {
	seen := make(map[string]bool)
	var tickers []string
	for i := range records {
		if !seen[records[i].Ticker] {
			seen[records[i].Ticker] = true
			tickers = append(tickers, records[i].Ticker)
		}
	}
	return tickers
}

func derefOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
