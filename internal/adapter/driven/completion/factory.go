package completion

import (
	"fmt"
	"strings"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// New escolhe o completer de acordo com cfg.Provider ("sql" ou "http").
func New(cfg types.CompletionConfig, db RowQuerier) (repository.CompletionRepository, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "sql":
		return NewSQLCompleter(db, cfg)
	case "http":
		return NewHTTPCompleter(cfg)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
}
