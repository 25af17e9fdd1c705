package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/completion"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/storage"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/warehouse"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driving/cli"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
	"github.com/diillson/warehouse-finops-dashboard-go/pkg/console"
	"github.com/diillson/warehouse-finops-dashboard-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version, config.NewConfigRepository(), newDashboardUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newDashboardUseCase conecta os repositórios à configuração efetiva de cada comando.
func newDashboardUseCase(ctx context.Context, cfg *types.Config) (*usecase.DashboardUseCase, io.Closer, error) {
	db, err := warehouse.Open(ctx, cfg.Warehouse)
	if err != nil {
		return nil, nil, err
	}

	warehouseRepo, err := warehouse.NewSQLRepository(db, cfg.Warehouse)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	completionRepo, err := completion.New(cfg.Completion, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	// O bucket só é resolvido quando há destino de upload
	var reportStore repository.ReportStore
	if cfg.Export.Upload != "" {
		reportStore, err = storage.NewS3ReportStore(ctx, cfg.Export.S3Region)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	uc := usecase.NewDashboardUseCase(
		warehouseRepo,
		completionRepo,
		export.NewExportRepository(),
		reportStore,
		console.NewConsole(),
		cfg.Completion.Model,
	)
	return uc, db, nil
}
