package console

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

const barWidth = 40

// Console é uma implementação do ConsoleInterface sobre pterm.
type Console struct {
	out io.Writer
}

// NewConsole cria um Console que escreve em stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWithWriter cria um Console que escreve em w (útil em testes).
func NewConsoleWithWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Fprint(c.out, a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.WithWriter(c.out).Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.WithWriter(c.out).Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.WithWriter(c.out).Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.WithWriter(c.out).Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.WithWriter(c.out).WithRemoveWhenDone(true).Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		_ = h.spinner.Stop()
	}
}

// progressHandle é uma implementação do ProgressHandle.
type progressHandle struct {
	bar *pterm.ProgressbarPrinter
}

// ProgressWithTotal cria uma barra de progresso com total passos.
func (c *Console) ProgressWithTotal(total int) types.ProgressHandle {
	bar, _ := pterm.DefaultProgressbar.
		WithWriter(c.out).
		WithTotal(total).
		WithTitle("Querying warehouse").
		WithShowElapsedTime(true).
		WithShowCount(true).
		Start()
	return &progressHandle{bar: bar}
}

// Increment incrementa a barra de progresso.
func (h *progressHandle) Increment() {
	if h.bar != nil {
		h.bar.Increment()
	}
}

// Stop pára a barra de progresso.
func (h *progressHandle) Stop() {
	if h.bar != nil {
		_, _ = h.bar.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	tableData = append(tableData, t.rows...)

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// DisplayBars exibe uma série como barras horizontais dentro de um box,
// com a variação em relação ao ponto anterior.
func (c *Console) DisplayBars(title string, points []types.SeriesPoint) {
	maxValue := 0.0
	for _, p := range points {
		maxValue = math.Max(maxValue, math.Abs(p.Value))
	}

	if maxValue == 0 {
		pterm.Warning.WithWriter(c.out).Printfln("%s: all values are 0.00 for this period", title)
		return
	}

	tableData := pterm.TableData{{"", "Value", "", "Change"}}
	var prev *float64
	for _, p := range points {
		bar := strings.Repeat("█", int(math.Round(math.Abs(p.Value)/maxValue*barWidth)))
		barColor := pterm.FgBlue.Sprint(bar)
		change := ""

		if prev != nil {
			change, barColor = describeChange(*prev, p.Value, bar)
		}

		tableData = append(tableData, []string{p.Label, fmt.Sprintf("%.2f", p.Value), barColor, change})
		v := p.Value
		prev = &v
	}

	rendered, _ := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	panel := pterm.DefaultBox.WithTitle(title).WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(rendered)
	fmt.Fprintln(c.out, "\n"+panel)
}

// describeChange colore a barra: vermelho para alta, verde para queda, amarelo quando estável.
func describeChange(prev, current float64, bar string) (string, string) {
	if math.Abs(prev) < 0.01 {
		if math.Abs(current) < 0.01 {
			return pterm.FgYellow.Sprint("0%"), pterm.FgYellow.Sprint(bar)
		}
		return pterm.FgRed.Sprint("N/A"), pterm.FgRed.Sprint(bar)
	}

	pct := (current - prev) / math.Abs(prev) * 100
	switch {
	case math.Abs(pct) < 0.01:
		return pterm.FgYellow.Sprint("0%"), pterm.FgYellow.Sprint(bar)
	case pct > 999:
		return pterm.FgRed.Sprint(">+999%"), pterm.FgRed.Sprint(bar)
	case pct < -999:
		return pterm.FgGreen.Sprint(">-999%"), pterm.FgGreen.Sprint(bar)
	case pct > 0:
		return pterm.FgRed.Sprintf("+%.2f%%", pct), pterm.FgRed.Sprint(bar)
	default:
		return pterm.FgGreen.Sprintf("%.2f%%", pct), pterm.FgGreen.Sprint(bar)
	}
}

// DisplayMetrics exibe os indicadores lado a lado, um box por métrica.
func (c *Console) DisplayMetrics(metrics []types.Metric) {
	if len(metrics) == 0 {
		return
	}
	panels := make([]pterm.Panel, 0, len(metrics))
	for _, m := range metrics {
		box := pterm.DefaultBox.WithTitle(m.Label).Sprint(BrightGreen(m.Value))
		panels = append(panels, pterm.Panel{Data: box})
	}
	rendered, _ := pterm.DefaultPanel.WithPanels(pterm.Panels{panels}).Srender()
	fmt.Fprintln(c.out, rendered)
}

// DisplayPanel exibe um texto longo (SQL, relatório de IA) dentro de um box.
func (c *Console) DisplayPanel(title string, body string) {
	fmt.Fprintln(c.out, pterm.DefaultBox.WithTitle(title).Sprint(strings.TrimRight(body, "\n")))
}

// DisplayChatTurn imprime um turno do chat com o papel destacado.
func (c *Console) DisplayChatTurn(role string, content string) {
	label := BrightCyan("You")
	if role == "assistant" {
		label = BrightMagenta("Cortex")
	}
	fmt.Fprintf(c.out, "%s: %s\n", label, content)
}
