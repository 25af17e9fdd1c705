package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/metrics"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct {
	now func() time.Time
}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{now: time.Now}
}

// ExportToCSV grava um CSV com uma seção por painel, separadas por linha em branco.
// Cada seção começa com uma linha "# <painel>" seguida do cabeçalho das colunas.
func (r *ExportRepositoryImpl) ExportToCSV(report entity.DashboardReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, section := range sections(report) {
		records := append([][]string{{"# " + section.title}, section.header}, section.rows...)
		records = append(records, []string{})
		if err := writer.WriteAll(records); err != nil {
			return "", fmt.Errorf("error writing CSV section %s: %w", section.title, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error writing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(report entity.DashboardReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(report entity.DashboardReport, filename, outputDir string) (string, error) {
	outputFilename, err := r.generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr("  Warehouse FinOps Dashboard"), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	subtitle := fmt.Sprintf("  %s | Warehouse: %s | Cost/credit: $%s | Discount: %d%%",
		report.Filter.DateRange(), report.Filter.WarehouseLabel(),
		report.Filter.CostPerCredit.StringFixed(2), report.Filter.DiscountPct)
	pdf.CellFormat(0, 8, tr(subtitle), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	for _, section := range sections(report) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(section.title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(2)

		colWidth := 190.0 / float64(len(section.header))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for _, h := range section.header {
			pdf.CellFormat(colWidth, 6, tr(h), "B", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 9)
		for _, row := range section.rows {
			for _, cell := range row {
				pdf.CellFormat(colWidth, 5, tr(cell), "", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

type section struct {
	title  string
	header []string
	rows   [][]string
}

// sections achata o relatório nas tabelas exportadas. Painéis ausentes são omitidos;
// avisos e erros por painel vão para a seção "Notes".
func sections(report entity.DashboardReport) []section {
	var out []section

	out = append(out, section{
		title:  "Filters",
		header: []string{"Start Date", "End Date", "Warehouse", "Cost Per Credit", "Discount %"},
		rows: [][]string{{
			report.Filter.StartDate.Format(entity.DateLayout),
			report.Filter.EndDate.Format(entity.DateLayout),
			cleanRichTags(report.Filter.WarehouseLabel()),
			report.Filter.CostPerCredit.StringFixed(2),
			strconv.Itoa(report.Filter.DiscountPct),
		}},
	})

	if s := report.Summary; s != nil {
		sec := section{title: "Daily Cost", header: []string{"Usage Date", "Credits", "Daily Cost", "Cumulative Cost"}}
		for _, row := range s.Rows {
			sec.rows = append(sec.rows, []string{
				row.UsageDate.Format(entity.DateLayout),
				row.Credits.StringFixed(2),
				row.DailyCost.StringFixed(2),
				row.CumCost.StringFixed(2),
			})
		}
		out = append(out, sec, section{
			title:  "Summary",
			header: []string{"Total Credits", "Estimated Cost", "Discounted Cost", "Days"},
			rows: [][]string{{
				s.TotalCredits.StringFixed(2),
				s.TotalCost.StringFixed(2),
				s.DiscountedCost.StringFixed(2),
				strconv.Itoa(s.Days),
			}},
		})
	}

	if w := report.Warehouses; w != nil {
		sec := section{title: "Top Warehouses", header: []string{"Warehouse", "Credits", "Estimated Cost"}}
		for _, row := range w.Rows {
			sec.rows = append(sec.rows, []string{cleanRichTags(row.WarehouseName), row.Credits.StringFixed(2), row.EstCost.StringFixed(2)})
		}
		out = append(out, sec)
	}

	if p := report.Performance; p != nil {
		sec := section{title: "Query Performance", header: []string{"Usage Date", "Queries", "Elapsed Min"}}
		for _, row := range p.Rows {
			sec.rows = append(sec.rows, []string{
				row.UsageDate.Format(entity.DateLayout),
				strconv.FormatInt(row.Queries, 10),
				metrics.FormatFloat(row.ElapsedMin),
			})
		}
		sec.rows = append(sec.rows, []string{
			"Total", strconv.FormatInt(p.TotalQueries, 10), metrics.FormatFloat(p.TotalElapsedMin),
		})
		out = append(out, sec)
	}

	if st := report.Storage; st != nil {
		sec := section{title: "Storage", header: []string{"Usage Date", "Storage GB"}}
		for _, row := range st.Rows {
			sec.rows = append(sec.rows, []string{row.UsageDate.Format(entity.DateLayout), metrics.FormatFloat(row.StorageGB)})
		}
		out = append(out, sec)
	}

	if notes := noteRows(report); len(notes) > 0 {
		out = append(out, section{title: "Notes", header: []string{"Panel", "Level", "Message"}, rows: notes})
	}
	return out
}

func noteRows(report entity.DashboardReport) [][]string {
	var rows [][]string
	add := func(level string, m map[string]string) {
		panels := make([]string, 0, len(m))
		for p := range m {
			panels = append(panels, p)
		}
		sort.Strings(panels)
		for _, p := range panels {
			rows = append(rows, []string{p, level, cleanRichTags(m[p])})
		}
	}
	add("warning", report.Warnings)
	add("error", report.Errors)
	return rows
}

func (r *ExportRepositoryImpl) generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	timestamp := now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
