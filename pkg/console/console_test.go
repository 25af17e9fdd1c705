package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

func plainConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()
	pterm.DisableStyling()
	color.NoColor = true
	t.Cleanup(pterm.EnableStyling)

	var buf bytes.Buffer
	return NewConsoleWithWriter(&buf), &buf
}

func TestDisplayBars(t *testing.T) {
	c, buf := plainConsole(t)

	c.DisplayBars("Daily Cost ($)", []types.SeriesPoint{
		{Label: "2024-01-01", Value: 30},
		{Label: "2024-01-02", Value: 15},
		{Label: "2024-01-03", Value: 0},
	})

	out := buf.String()
	assert.Contains(t, out, "Daily Cost ($)")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "-50.00%")
	assert.Contains(t, out, "-100.00%")
	assert.Contains(t, out, strings.Repeat("█", barWidth))
}

func TestDisplayBarsAllZero(t *testing.T) {
	c, buf := plainConsole(t)

	c.DisplayBars("Storage Growth (GB)", []types.SeriesPoint{{Label: "2024-01-01", Value: 0}})
	assert.Contains(t, buf.String(), "all values are 0.00")
}

func TestDescribeChange(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	cases := []struct {
		prev, cur float64
		want      string
	}{
		{0, 0, "0%"},
		{0, 5, "N/A"},
		{10, 10, "0%"},
		{10, 15, "+50.00%"},
		{10, 5, "-50.00%"},
		{1, 20000, ">+999%"},
	}
	for _, tc := range cases {
		got, _ := describeChange(tc.prev, tc.cur, "█")
		assert.Equal(t, tc.want, got, "%v -> %v", tc.prev, tc.cur)
	}
}

func TestTableRender(t *testing.T) {
	c, _ := plainConsole(t)

	table := c.CreateTable()
	table.AddColumn("Warehouse")
	table.AddColumn("Credits")
	table.AddRow("ETL_WH", "12.00")

	out := table.Render()
	assert.Contains(t, out, "Warehouse")
	assert.Contains(t, out, "ETL_WH")
	assert.Contains(t, out, "12.00")
}

func TestDisplayPanelMetricsAndChat(t *testing.T) {
	c, buf := plainConsole(t)

	c.DisplayMetrics([]types.Metric{{Label: "Total Cost ($)", Value: "45.00"}, {Label: "Days", Value: "3"}})
	c.DisplayPanel("Cortex AI Insights", "Executive summary\n")
	c.DisplayChatTurn("user", "Which warehouse?")
	c.DisplayChatTurn("assistant", "ETL_WH")
	c.LogWarning("No data available.")

	out := buf.String()
	assert.Contains(t, out, "Total Cost ($)")
	assert.Contains(t, out, "45.00")
	assert.Contains(t, out, "Executive summary")
	assert.Contains(t, out, "You: Which warehouse?")
	assert.Contains(t, out, "Cortex: ETL_WH")
	assert.Contains(t, out, "No data available.")
}
