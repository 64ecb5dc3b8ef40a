package dto

import (
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportRangeParams defines the date range query parameters shared by reports.
type ReportRangeParams struct {
	From string `form:"from" binding:"required"` // YYYY-MM-DD
	To   string `form:"to" binding:"required"`   // YYYY-MM-DD
}

// DailySalesRowResponse represents one day in the daily sales report.
type DailySalesRowResponse struct {
	Date        string          `json:"date"`
	RecordCount int             `json:"recordCount"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DailySalesResponse represents the daily sales report response.
type DailySalesResponse struct {
	FromDate string                  `json:"fromDate"`
	ToDate   string                  `json:"toDate"`
	Rows     []DailySalesRowResponse `json:"rows"`
	Totals   struct {
		RecordCount int             `json:"recordCount"`
		Revenue     decimal.Decimal `json:"revenue"`
	} `json:"totals"`
}

// HourlySalesRowResponse represents one hour bucket in the hourly report.
type HourlySalesRowResponse struct {
	Hour        int             `json:"hour"`
	RecordCount int             `json:"recordCount"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// HourlySalesResponse represents the hourly sales report response.
type HourlySalesResponse struct {
	FromDate string                   `json:"fromDate"`
	ToDate   string                   `json:"toDate"`
	Rows     []HourlySalesRowResponse `json:"rows"`
}

// PaymentBreakdownRowResponse represents one payment method total.
type PaymentBreakdownRowResponse struct {
	Method      string          `json:"method"`
	RecordCount int             `json:"recordCount"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// PaymentBreakdownResponse represents the payment breakdown report response.
type PaymentBreakdownResponse struct {
	FromDate string                        `json:"fromDate"`
	ToDate   string                        `json:"toDate"`
	Rows     []PaymentBreakdownRowResponse `json:"rows"`
}

// InactiveClientRowResponse represents a client with no recent visits.
type InactiveClientRowResponse struct {
	ClientName   string    `json:"clientName"`
	ClientPhone  string    `json:"clientPhone"`
	LastVisit    time.Time `json:"lastVisit"`
	DaysInactive int       `json:"daysInactive"`
}

// InactiveClientsResponse represents the inactive clients report response.
type InactiveClientsResponse struct {
	Since string                      `json:"since"`
	Rows  []InactiveClientRowResponse `json:"rows"`
}

// ToDailySalesResponse converts domain daily sales rows to a DTO response
func ToDailySalesResponse(rows []domain.DailySalesRow, from, to time.Time) DailySalesResponse {
	response := DailySalesResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Rows:     make([]DailySalesRowResponse, len(rows)),
	}

	totalCount := 0
	totalRevenue := decimal.Zero

	for i, row := range rows {
		response.Rows[i] = DailySalesRowResponse{
			Date:        row.Date.Format("2006-01-02"),
			RecordCount: row.RecordCount,
			Revenue:     row.Total,
		}
		totalCount += row.RecordCount
		totalRevenue = totalRevenue.Add(row.Total)
	}

	response.Totals.RecordCount = totalCount
	response.Totals.Revenue = totalRevenue

	return response
}

// ToHourlySalesResponse converts domain hourly sales rows to a DTO response
func ToHourlySalesResponse(rows []domain.HourlySalesRow, from, to time.Time) HourlySalesResponse {
	response := HourlySalesResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Rows:     make([]HourlySalesRowResponse, len(rows)),
	}
	for i, row := range rows {
		response.Rows[i] = HourlySalesRowResponse{
			Hour:        row.Hour,
			RecordCount: row.RecordCount,
			Revenue:     row.Total,
		}
	}
	return response
}

// ToPaymentBreakdownResponse converts domain payment totals to a DTO response
func ToPaymentBreakdownResponse(rows []domain.PaymentMethodTotal, from, to time.Time) PaymentBreakdownResponse {
	response := PaymentBreakdownResponse{
		FromDate: from.Format("2006-01-02"),
		ToDate:   to.Format("2006-01-02"),
		Rows:     make([]PaymentBreakdownRowResponse, len(rows)),
	}
	for i, row := range rows {
		response.Rows[i] = PaymentBreakdownRowResponse{
			Method:      row.Method,
			RecordCount: row.RecordCount,
			Revenue:     row.Total,
		}
	}
	return response
}

// ToInactiveClientsResponse converts domain inactive client rows to a DTO response
func ToInactiveClientsResponse(rows []domain.InactiveClientRow, since time.Time) InactiveClientsResponse {
	response := InactiveClientsResponse{
		Since: since.Format("2006-01-02"),
		Rows:  make([]InactiveClientRowResponse, len(rows)),
	}
	for i, row := range rows {
		response.Rows[i] = InactiveClientRowResponse{
			ClientName:   row.ClientName,
			ClientPhone:  row.ClientPhone,
			LastVisit:    row.LastVisit,
			DaysInactive: row.DaysInactive,
		}
	}
	return response
}
