package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// EnvPrefix é o prefixo das variáveis de ambiente que sobrescrevem o arquivo.
const EnvPrefix = "FINOPS_"

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	// EnvFiles são carregados com godotenv antes das variáveis FINOPS_*. Arquivos ausentes são ignorados.
	EnvFiles []string
	lookup   func(string) (string, bool)
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{EnvFiles: []string{".env"}, lookup: os.LookupEnv}
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension, fileData, err := readConfigFile(filePath)
	if err != nil {
		return nil, err
	}

	var config types.Config
	if err := decode(fileExtension, fileData, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func readConfigFile(filePath string) (string, []byte, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("error reading config file: %w", err)
	}
	return fileExtension, fileData, nil
}

func decode(fileExtension string, fileData []byte, v any) error {
	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, v); err != nil {
			return fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, v); err != nil {
			return fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, v); err != nil {
			return fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", fileExtension)
	}
	return nil
}

// dashboardValues marca quais números do painel o arquivo define,
// inclusive quando o valor é zero.
type dashboardValues struct {
	Dashboard struct {
		Days          *int     `json:"days" yaml:"days" toml:"days"`
		CostPerCredit *float64 `json:"cost_per_credit" yaml:"cost_per_credit" toml:"cost_per_credit"`
		DiscountPct   *int     `json:"discount_pct" yaml:"discount_pct" toml:"discount_pct"`
	} `json:"dashboard" yaml:"dashboard" toml:"dashboard"`
}

// LoadConfig monta a configuração efetiva: padrões, arquivo (opcional),
// .env e variáveis FINOPS_*, nessa ordem de precedência crescente.
func (r *ConfigRepositoryImpl) LoadConfig(filePath string) (*types.Config, error) {
	cfg := types.DefaultConfig()

	if filePath != "" {
		fileExtension, fileData, err := readConfigFile(filePath)
		if err != nil {
			return nil, err
		}
		var fileCfg types.Config
		if err := decode(fileExtension, fileData, &fileCfg); err != nil {
			return nil, err
		}
		var values dashboardValues
		if err := decode(fileExtension, fileData, &values); err != nil {
			return nil, err
		}
		merge(cfg, &fileCfg)
		mergeDashboard(&cfg.Dashboard, values)
	}

	for _, envFile := range r.EnvFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	if err := r.applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeDashboard(dst *types.DashboardConfig, src dashboardValues) {
	if src.Dashboard.Days != nil {
		dst.Days = *src.Dashboard.Days
	}
	if src.Dashboard.CostPerCredit != nil {
		dst.CostPerCredit = *src.Dashboard.CostPerCredit
	}
	if src.Dashboard.DiscountPct != nil {
		dst.DiscountPct = *src.Dashboard.DiscountPct
	}
}

// merge copia para dst os campos definidos (não zero) em src.
// Os números do painel ficam com mergeDashboard.
func merge(dst, src *types.Config) {
	setString(&dst.Warehouse.Driver, src.Warehouse.Driver)
	setString(&dst.Warehouse.DSN, src.Warehouse.DSN)
	setString(&dst.Warehouse.Database, src.Warehouse.Database)
	setString(&dst.Warehouse.Schema, src.Warehouse.Schema)

	setString(&dst.Completion.Provider, src.Completion.Provider)
	setString(&dst.Completion.Model, src.Completion.Model)
	setString(&dst.Completion.Function, src.Completion.Function)
	setString(&dst.Completion.Endpoint, src.Completion.Endpoint)
	setString(&dst.Completion.Token, src.Completion.Token)
	if src.Completion.TimeoutSeconds > 0 {
		dst.Completion.TimeoutSeconds = src.Completion.TimeoutSeconds
	}
	dst.Completion.InlineLiterals = dst.Completion.InlineLiterals || src.Completion.InlineLiterals

	setString(&dst.Dashboard.Warehouse, src.Dashboard.Warehouse)

	setString(&dst.Export.ReportName, src.Export.ReportName)
	if len(src.Export.ReportType) > 0 {
		dst.Export.ReportType = src.Export.ReportType
	}
	setString(&dst.Export.Dir, src.Export.Dir)
	setString(&dst.Export.Upload, src.Export.Upload)
	setString(&dst.Export.S3Region, src.Export.S3Region)

	setString(&dst.Server.Listen, src.Server.Listen)
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = src.Server.AllowedOrigins
	}
	setString(&dst.Server.LogLevel, src.Server.LogLevel)
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func (r *ConfigRepositoryImpl) applyEnv(cfg *types.Config) error {
	lookup := r.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	strs := map[string]*string{
		"WAREHOUSE_DRIVER":    &cfg.Warehouse.Driver,
		"WAREHOUSE_DSN":       &cfg.Warehouse.DSN,
		"DATABASE":            &cfg.Warehouse.Database,
		"SCHEMA":              &cfg.Warehouse.Schema,
		"COMPLETION_PROVIDER": &cfg.Completion.Provider,
		"COMPLETION_MODEL":    &cfg.Completion.Model,
		"COMPLETION_FUNCTION": &cfg.Completion.Function,
		"COMPLETION_ENDPOINT": &cfg.Completion.Endpoint,
		"COMPLETION_TOKEN":    &cfg.Completion.Token,
		"WAREHOUSE":           &cfg.Dashboard.Warehouse,
		"UPLOAD":              &cfg.Export.Upload,
		"S3_REGION":           &cfg.Export.S3Region,
		"LISTEN":              &cfg.Server.Listen,
		"LOG_LEVEL":           &cfg.Server.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"COMPLETION_TIMEOUT": &cfg.Completion.TimeoutSeconds,
		"DAYS":               &cfg.Dashboard.Days,
		"DISCOUNT_PCT":       &cfg.Dashboard.DiscountPct,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "COST_PER_CREDIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sCOST_PER_CREDIT: %w", EnvPrefix, err)
		}
		cfg.Dashboard.CostPerCredit = f
	}
	if v, ok := lookup(EnvPrefix + "INLINE_LITERALS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sINLINE_LITERALS: %w", EnvPrefix, err)
		}
		cfg.Completion.InlineLiterals = b
	}
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok && v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "REPORT_TYPE"); ok && v != "" {
		cfg.Export.ReportType = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	parts := lo.Map(strings.Split(v, ","), func(s string, _ int) string { return strings.TrimSpace(s) })
	return lo.Compact(parts)
}
