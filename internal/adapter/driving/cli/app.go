package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driving/httpapi"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
	"github.com/diillson/warehouse-finops-dashboard-go/pkg/version"
)

// UseCaseFactory cria o caso de uso a partir da configuração efetiva.
// O closer libera a conexão com o warehouse.
type UseCaseFactory func(ctx context.Context, cfg *types.Config) (*usecase.DashboardUseCase, io.Closer, error)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	factory    UseCaseFactory
	version    string
	now        func() time.Time
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, configRepo repository.ConfigRepository, factory UseCaseFactory) *CLIApp {
	app := &CLIApp{
		version:    versionStr,
		configRepo: configRepo,
		factory:    factory,
		now:        time.Now,
	}

	rootCmd := &cobra.Command{
		Use:           "warehouse-finops",
		Short:         "Warehouse FinOps Dashboard CLI",
		Long:          "Cost, query performance and storage dashboard over warehouse usage tables, with AI insights and chat.",
		Version:       version.FormatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.panelCommand(),
	}

	rootCmd.SetVersionTemplate(`{{printf "Warehouse FinOps Dashboard version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.String("start", "", "Start date (YYYY-MM-DD, inclusive)")
	flags.String("end", "", "End date (YYYY-MM-DD, inclusive; default: today)")
	flags.IntP("days", "t", 0, "Window size in days when --start is not given (default from config: 30)")
	flags.StringP("warehouse", "w", "", `Warehouse to filter by (default "(All)")`)
	flags.Float64("cost-per-credit", 0, "Cost per credit in dollars (default from config: 3.00)")
	flags.Int("discount", 0, "Contract discount percentage, 0-100")
	flags.StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	flags.StringSliceP("report-type", "y", []string{"csv"}, "Specify report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.String("upload", "", "Upload exported reports to this S3 destination (s3://bucket/prefix)")
	flags.Bool("show-sql", false, "Print the SQL of each panel before running it")

	rootCmd.AddCommand(
		&cobra.Command{Use: "summary", Short: "Daily and cumulative cost", RunE: app.panelCommand(entity.PanelSummary)},
		&cobra.Command{Use: "warehouses", Short: "Cost by warehouse", RunE: app.panelCommand(entity.PanelWarehouses)},
		&cobra.Command{Use: "queries", Short: "Query counts and elapsed time", RunE: app.panelCommand(entity.PanelPerformance)},
		&cobra.Command{Use: "storage", Short: "Storage growth", RunE: app.panelCommand(entity.PanelStorage)},
		&cobra.Command{Use: "insights", Short: "AI executive summary of the selected period", RunE: app.runInsights},
		&cobra.Command{Use: "chat", Short: "Ask questions about usage in an interactive session", RunE: app.runChat},
		&cobra.Command{Use: "list-warehouses", Short: "List the warehouses available to the filter", RunE: app.runListWarehouses},
		&cobra.Command{Use: "serve", Short: "Serve the dashboard as a JSON API", RunE: app.runServe},
	)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetArgs substitui os argumentos da linha de comando (usado em testes).
func (app *CLIApp) SetArgs(args []string) {
	app.rootCmd.SetArgs(args)
}

// SetIO redireciona entrada e saída dos comandos.
func (app *CLIApp) SetIO(in io.Reader, out io.Writer) {
	app.rootCmd.SetIn(in)
	app.rootCmd.SetOut(out)
	app.rootCmd.SetErr(out)
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config-file")
	start, _ := flags.GetString("start")
	end, _ := flags.GetString("end")
	warehouseName, _ := flags.GetString("warehouse")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	upload, _ := flags.GetString("upload")
	showSQL, _ := flags.GetBool("show-sql")

	args := &types.CLIArgs{
		ConfigFile: configFile,
		StartDate:  start,
		EndDate:    end,
		Warehouse:  warehouseName,
		ReportName: reportName,
		ReportType: reportType,
		Upload:     upload,
		ShowSQL:    showSQL,
	}

	if flags.Changed("days") {
		days, _ := flags.GetInt("days")
		args.Days = &days
	}
	if flags.Changed("cost-per-credit") {
		rate, _ := flags.GetFloat64("cost-per-credit")
		args.CostPerCredit = &rate
	}
	if flags.Changed("discount") {
		discount, _ := flags.GetInt("discount")
		args.Discount = &discount
	}

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		args.Dir = absDir
	}

	return args, nil
}

// mergeConfig aplica os padrões de exportação do arquivo quando a flag não foi usada.
func mergeConfig(cmd *cobra.Command, args *types.CLIArgs, cfg *types.Config) {
	if args.ReportName == "" {
		args.ReportName = cfg.Export.ReportName
	}
	if !cmd.Flags().Changed("report-type") && len(cfg.Export.ReportType) > 0 {
		args.ReportType = cfg.Export.ReportType
	}
	if args.Dir == "" {
		args.Dir = cfg.Export.Dir
	}
	if args.Upload == "" {
		args.Upload = cfg.Export.Upload
	}
}

// session é o estado de uma execução: configuração, caso de uso e filtro.
type session struct {
	args   *types.CLIArgs
	cfg    *types.Config
	uc     *usecase.DashboardUseCase
	filter entity.FilterState
	closer io.Closer
}

func (app *CLIApp) prepare(cmd *cobra.Command) (*session, error) {
	args, err := app.parseArgs(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := app.configRepo.LoadConfig(args.ConfigFile)
	if err != nil {
		return nil, err
	}
	mergeConfig(cmd, args, cfg)
	cfg.Export.Upload = args.Upload

	filter, err := usecase.BuildFilter(cfg.Dashboard, app.now(), usecase.FilterInput{
		StartDate:     args.StartDate,
		EndDate:       args.EndDate,
		Days:          args.Days,
		Warehouse:     args.Warehouse,
		CostPerCredit: args.CostPerCredit,
		DiscountPct:   args.Discount,
	})
	if err != nil {
		return nil, err
	}

	uc, closer, err := app.factory(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return &session{args: args, cfg: cfg, uc: uc, filter: filter, closer: closer}, nil
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

func (app *CLIApp) start(cmd *cobra.Command) {
	displayWelcomeBanner(cmd.OutOrStdout())
	go checkLatestVersion(cmd.Context(), cmd.ErrOrStderr(), app.version)
}

func (app *CLIApp) panelCommand(panels ...string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		app.start(cmd)
		s, err := app.prepare(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.uc.RunDashboard(cmd.Context(), s.args, s.filter, panels...)
	}
}

func (app *CLIApp) runInsights(cmd *cobra.Command, _ []string) error {
	app.start(cmd)
	s, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.uc.RunInsights(cmd.Context(), s.filter)
}

func (app *CLIApp) runChat(cmd *cobra.Command, _ []string) error {
	app.start(cmd)
	s, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.uc.RunChat(cmd.Context(), s.filter, cmd.InOrStdin())
}

func (app *CLIApp) runListWarehouses(cmd *cobra.Command, _ []string) error {
	s, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	names, err := s.uc.ListWarehouses(cmd.Context())
	if err != nil {
		return err
	}
	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

func (app *CLIApp) runServe(cmd *cobra.Command, _ []string) error {
	s, err := app.prepare(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := httpapi.NewLogger(s.cfg.Server.LogLevel, cmd.ErrOrStderr())
	return httpapi.NewServer(s.uc, *s.cfg, logger).ListenAndServe(ctx)
}
