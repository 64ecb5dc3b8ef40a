package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySalesRow represents one day's sales, built only from non-voided records.
type DailySalesRow struct {
	Date        time.Time       `json:"date"`
	RecordCount int             `json:"recordCount"`
	Total       decimal.Decimal `json:"total"`
}

// HourlySalesRow represents the intake distribution for one hour of day.
type HourlySalesRow struct {
	Hour        int             `json:"hour"` // 0-23, branch-local
	RecordCount int             `json:"recordCount"`
	Total       decimal.Decimal `json:"total"`
}

// PaymentMethodTotal breaks a period's revenue down by settlement method.
// Account-settled records are reported under the CURRENT_ACCOUNT pseudo-method.
type PaymentMethodTotal struct {
	Method      string          `json:"method"`
	RecordCount int             `json:"recordCount"`
	Total       decimal.Decimal `json:"total"`
}

// InactiveClientRow is a client who has not brought a vehicle in since LastVisit.
type InactiveClientRow struct {
	ClientName   string    `json:"clientName"`
	ClientPhone  string    `json:"clientPhone"`
	LastVisit    time.Time `json:"lastVisit"`
	DaysInactive int       `json:"daysInactive"`
}
