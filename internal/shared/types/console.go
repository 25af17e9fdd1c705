package types

// ConsoleInterface define a interface para saída no console.
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle
	ProgressWithTotal(total int) ProgressHandle

	CreateTable() TableInterface
	DisplayBars(title string, points []SeriesPoint)
	DisplayMetrics(metrics []Metric)
	DisplayPanel(title string, body string)
	DisplayChatTurn(role string, content string)
}

// StatusHandle é uma interface para atualizar uma mensagem de status.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle é uma interface para atualizar uma barra de progresso.
type ProgressHandle interface {
	Increment()
	Stop()
}

// TableInterface define a interface para criar e manipular tabelas.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// SeriesPoint é um ponto de uma série exibida como barra (dia, warehouse...).
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Metric é um indicador exibido no topo de um painel.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
