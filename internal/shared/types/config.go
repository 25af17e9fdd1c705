package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	Warehouse  WarehouseConfig  `json:"warehouse" yaml:"warehouse" toml:"warehouse"`
	Completion CompletionConfig `json:"completion" yaml:"completion" toml:"completion"`
	Dashboard  DashboardConfig  `json:"dashboard" yaml:"dashboard" toml:"dashboard"`
	Export     ExportConfig     `json:"export" yaml:"export" toml:"export"`
	Server     ServerConfig     `json:"server" yaml:"server" toml:"server"`
}

// WarehouseConfig descreve a conexão com o warehouse e onde ficam as tabelas de uso.
type WarehouseConfig struct {
	Driver   string `json:"driver" yaml:"driver" toml:"driver"`
	DSN      string `json:"dsn" yaml:"dsn" toml:"dsn"`
	Database string `json:"database" yaml:"database" toml:"database"`
	Schema   string `json:"schema" yaml:"schema" toml:"schema"`
}

// CompletionConfig descreve o serviço de completion usado pelos recursos de IA.
type CompletionConfig struct {
	Provider       string `json:"provider" yaml:"provider" toml:"provider"`
	Model          string `json:"model" yaml:"model" toml:"model"`
	Function       string `json:"function" yaml:"function" toml:"function"`
	Endpoint       string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`
	Token          string `json:"token" yaml:"token" toml:"token"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	InlineLiterals bool   `json:"inline_literals" yaml:"inline_literals" toml:"inline_literals"`
}

// DashboardConfig holds the default filter values.
type DashboardConfig struct {
	Days          int     `json:"days" yaml:"days" toml:"days"`
	CostPerCredit float64 `json:"cost_per_credit" yaml:"cost_per_credit" toml:"cost_per_credit"`
	DiscountPct   int     `json:"discount_pct" yaml:"discount_pct" toml:"discount_pct"`
	Warehouse     string  `json:"warehouse" yaml:"warehouse" toml:"warehouse"`
}

// ExportConfig holds report export defaults.
type ExportConfig struct {
	ReportName string   `json:"report_name" yaml:"report_name" toml:"report_name"`
	ReportType []string `json:"report_type" yaml:"report_type" toml:"report_type"`
	Dir        string   `json:"dir" yaml:"dir" toml:"dir"`
	Upload     string   `json:"upload" yaml:"upload" toml:"upload"`
	S3Region   string   `json:"s3_region" yaml:"s3_region" toml:"s3_region"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Listen         string   `json:"listen" yaml:"listen" toml:"listen"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// DefaultConfig retorna a configuração usada quando nenhum arquivo é informado.
func DefaultConfig() *Config {
	return &Config{
		Warehouse: WarehouseConfig{
			Driver:   "duckdb",
			DSN:      "finops.duckdb",
			Database: "FINOPS",
			Schema:   "SNOWFLAKE_USAGE",
		},
		Completion: CompletionConfig{
			Provider:       "sql",
			Model:          "mistral-large2",
			Function:       "SNOWFLAKE.CORTEX.COMPLETE",
			TimeoutSeconds: 120,
		},
		Dashboard: DashboardConfig{
			Days:          30,
			CostPerCredit: 3.00,
			DiscountPct:   0,
			Warehouse:     "(All)",
		},
		Export: ExportConfig{
			ReportType: []string{"csv"},
		},
		Server: ServerConfig{
			Listen:         ":8080",
			AllowedOrigins: []string{"*"},
			LogLevel:       "info",
		},
	}
}
