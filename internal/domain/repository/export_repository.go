package repository

import (
	"context"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(report entity.DashboardReport, filename string, outputDir string) (string, error)
	ExportToJSON(report entity.DashboardReport, filename string, outputDir string) (string, error)
	ExportToPDF(report entity.DashboardReport, filename string, outputDir string) (string, error)
}

// ReportStore publica um relatório exportado em um armazenamento remoto.
type ReportStore interface {
	Upload(ctx context.Context, localPath string, destination string) (string, error)
}
