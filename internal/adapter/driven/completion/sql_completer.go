package completion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/prompt"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/query"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/domain/repository"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
)

// RowQuerier is satisfied by *sql.DB.
type RowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLCompleter chama a função de completion do próprio warehouse
// (ex.: SNOWFLAKE.CORTEX.COMPLETE) com uma consulta SELECT.
type SQLCompleter struct {
	db       RowQuerier
	function string
	inline   bool
}

// NewSQLCompleter cria o completer. Com cfg.InlineLiterals o modelo e o prompt
// são embutidos como literais escapados em vez de parâmetros.
func NewSQLCompleter(db RowQuerier, cfg types.CompletionConfig) (repository.CompletionRepository, error) {
	if err := query.ValidateQualifiedName(cfg.Function); err != nil {
		return nil, fmt.Errorf("invalid completion function: %w", err)
	}
	return &SQLCompleter{db: db, function: cfg.Function, inline: cfg.InlineLiterals}, nil
}

// Complete executa a função de completion e retorna a coluna RESPONSE.
func (c *SQLCompleter) Complete(ctx context.Context, model string, text string) (string, error) {
	var stmt string
	var args []any
	if c.inline {
		stmt = fmt.Sprintf("SELECT %s('%s', '%s') AS RESPONSE",
			c.function, prompt.EscapeLiteral(model), prompt.EscapeLiteral(text))
	} else {
		stmt = fmt.Sprintf("SELECT %s(?, ?) AS RESPONSE", c.function)
		args = []any{model, prompt.Clean(text)}
	}

	var response sql.NullString
	if err := c.db.QueryRowContext(ctx, stmt, args...).Scan(&response); err != nil {
		return "", &types.CompletionError{Model: model, Err: err}
	}
	if !response.Valid {
		return "", &types.CompletionError{Model: model, Err: errors.New("empty response")}
	}
	return response.String, nil
}
