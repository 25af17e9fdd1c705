package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoData                = errors.New("no data available for the selected filters")
	ErrInvalidDateRange      = errors.New("start date must be on or before end date")
	ErrNegativeCostPerCredit = errors.New("cost per credit must be zero or positive")
	ErrInvalidCostPerCredit  = errors.New("cost per credit must be a finite number")
	ErrInvalidDiscount       = errors.New("discount must be between 0 and 100")
	ErrInvalidIdentifier     = errors.New("invalid SQL identifier")
	ErrUnsupportedDriver     = errors.New("unsupported warehouse driver")
	ErrEmptyQuestion         = errors.New("question must not be empty")
	ErrTurnPending           = errors.New("a chat turn is already waiting for an answer")
	ErrNoPendingTurn         = errors.New("no chat turn is waiting for an answer")
	ErrSessionNotFound       = errors.New("chat session not found")
)

// QueryExecutionError é retornado quando a chamada ao warehouse falha.
// Falhas de rede, autenticação e sintaxe chegam ao chamador da mesma forma.
type QueryExecutionError struct {
	Query string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("query execution failed: %v", e.Err)
	}
	return fmt.Sprintf("query %s failed: %v", e.Query, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// CompletionError é retornado quando o serviço de completion falha.
type CompletionError struct {
	Model string
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion with model %s failed: %v", e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}
