package dto

import (
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRecordRequest defines the data needed to register a vehicle at intake.
type CreateRecordRequest struct {
	VehicleCategory  domain.VehicleCategory `json:"vehicleCategory" binding:"required,oneof=COMPACT SUV VAN LARGE_VAN MOTORCYCLE"`
	ServiceKinds     []domain.ServiceKind   `json:"serviceKinds" binding:"required,min=1,dive,oneof=SIMPLE WITH_WAX INTERIOR CHASSIS_CLEANING POLISHING"`
	ExtraDescription string                 `json:"extraDescription"`
	ExtraAmount      decimal.Decimal        `json:"extraAmount"`
	ClientName       string                 `json:"clientName" binding:"required"`
	ClientPhone      string                 `json:"clientPhone"`
	// UseCurrentAccount settles the frozen total against the client's current
	// account immediately. Requires ClientPhone to resolve the account.
	UseCurrentAccount bool    `json:"useCurrentAccount"`
	PromotionID       *string `json:"promotionID"`
	BenefitID         *string `json:"benefitID"`
}

// RegisterPaymentRequest defines the data needed to settle a record by cash or transfer.
type RegisterPaymentRequest struct {
	Method domain.PaymentMethod `json:"method" binding:"required,oneof=CASH TRANSFER"`
}

// VoidRecordRequest carries the mandatory reason for cancelling or annulling a record.
type VoidRecordRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// LineItemResponse defines one priced service within a record.
type LineItemResponse struct {
	Kind      domain.ServiceKind `json:"kind"`
	UnitPrice decimal.Decimal    `json:"unitPrice"`
}

// RecordResponse defines the data returned for a service record.
// Mirrors domain.ServiceRecord.
type RecordResponse struct {
	RecordID         string                 `json:"recordID"`
	BranchID         string                 `json:"branchID"`
	VehicleCategory  domain.VehicleCategory `json:"vehicleCategory"`
	ServiceKinds     []domain.ServiceKind   `json:"serviceKinds"`
	ExtraDescription string                 `json:"extraDescription,omitempty"`
	ExtraAmount      decimal.Decimal        `json:"extraAmount"`
	ClientName       string                 `json:"clientName"`
	ClientPhone      string                 `json:"clientPhone,omitempty"`
	TotalPrice       decimal.Decimal        `json:"totalPrice"`
	Paid             bool                   `json:"paid"`
	PaymentMethod    domain.PaymentMethod   `json:"paymentMethod"`
	PaidViaAccount   bool                   `json:"paidViaAccount"`
	AccountID        *string                `json:"accountID,omitempty"`
	PromotionID      *string                `json:"promotionID,omitempty"`
	BenefitID        *string                `json:"benefitID,omitempty"`
	State            domain.RecordState     `json:"state"`
	VoidReason       string                 `json:"voidReason,omitempty"`
	ReadyAt          *time.Time             `json:"readyAt,omitempty"`
	DeliveredAt      *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	CreatedBy        string                 `json:"createdBy"`
	LastUpdatedAt    time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy    string                 `json:"lastUpdatedBy"`
}

// AnnulRecordResponse wraps the annulled record together with the amount
// credited back to the client's current account (zero when no debit existed).
type AnnulRecordResponse struct {
	Record         RecordResponse  `json:"record"`
	ReversedAmount decimal.Decimal `json:"reversedAmount"`
}

// DeleteRecordResponse reports the reversal fired before physical deletion.
type DeleteRecordResponse struct {
	RecordID       string          `json:"recordID"`
	ReversedAmount decimal.Decimal `json:"reversedAmount"`
}

// ListRecordsParams defines query parameters for listing records.
type ListRecordsParams struct {
	Limit         int     `form:"limit,default=20"`
	NextToken     *string `form:"nextToken"`
	IncludeVoided bool    `form:"includeVoided,default=false"`
}

// ListRecordsResponse wraps the list of records with the pagination token.
type ListRecordsResponse struct {
	Records   []RecordResponse `json:"records"`
	NextToken *string          `json:"nextToken,omitempty"`
}

// ToRecordResponse converts a domain.ServiceRecord to RecordResponse DTO
func ToRecordResponse(r *domain.ServiceRecord) RecordResponse {
	return RecordResponse{
		RecordID:         r.RecordID,
		BranchID:         r.BranchID,
		VehicleCategory:  r.VehicleCategory,
		ServiceKinds:     r.ServiceKinds,
		ExtraDescription: r.ExtraDescription,
		ExtraAmount:      r.ExtraAmount,
		ClientName:       r.ClientName,
		ClientPhone:      r.ClientPhone,
		TotalPrice:       r.TotalPrice,
		Paid:             r.Paid,
		PaymentMethod:    r.PaymentMethod,
		PaidViaAccount:   r.PaidViaAccount,
		AccountID:        r.AccountID,
		PromotionID:      r.PromotionID,
		BenefitID:        r.BenefitID,
		State:            r.State,
		VoidReason:       r.VoidReason,
		ReadyAt:          r.ReadyAt,
		DeliveredAt:      r.DeliveredAt,
		CreatedAt:        r.CreatedAt,
		CreatedBy:        r.CreatedBy,
		LastUpdatedAt:    r.LastUpdatedAt,
		LastUpdatedBy:    r.LastUpdatedBy,
	}
}

// ToListRecordsResponse converts a slice of domain.ServiceRecord to the list DTO.
func ToListRecordsResponse(records []domain.ServiceRecord, nextToken *string) ListRecordsResponse {
	res := make([]RecordResponse, len(records))
	for i, r := range records {
		res[i] = ToRecordResponse(&r)
	}
	return ListRecordsResponse{Records: res, NextToken: nextToken}
}
