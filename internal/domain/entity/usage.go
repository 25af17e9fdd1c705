package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCredits é uma linha da consulta de créditos diários.
type DailyCredits struct {
	UsageDate time.Time       `json:"usage_date"`
	Credits   decimal.Decimal `json:"credits"`
}

// WarehouseCredits é uma linha do ranking de créditos por warehouse.
type WarehouseCredits struct {
	WarehouseName string          `json:"warehouse_name"`
	Credits       decimal.Decimal `json:"credits"`
}

// DailyQueryMetrics é uma linha da consulta de performance diária.
type DailyQueryMetrics struct {
	UsageDate time.Time `json:"usage_date"`
	Queries   int64     `json:"queries"`
	ElapsedMS float64   `json:"elapsed_ms"`
}

// DailyStorage é uma linha da consulta de armazenamento diário.
type DailyStorage struct {
	UsageDate time.Time `json:"usage_date"`
	StorageGB float64   `json:"storage_gb"`
}
