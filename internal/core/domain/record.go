package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VehicleCategory classifies the vehicle being washed; pricing is keyed on it.
type VehicleCategory string

const (
	CategoryCompact    VehicleCategory = "COMPACT"
	CategorySUV        VehicleCategory = "SUV"
	CategoryVan        VehicleCategory = "VAN"
	CategoryLargeVan   VehicleCategory = "LARGE_VAN"
	CategoryMotorcycle VehicleCategory = "MOTORCYCLE"
)

// ServiceKind identifies one of the wash services offered.
type ServiceKind string

const (
	KindSimple    ServiceKind = "SIMPLE"
	KindWithWax   ServiceKind = "WITH_WAX"
	KindInterior  ServiceKind = "INTERIOR"
	KindChassis   ServiceKind = "CHASSIS_CLEANING"
	KindPolishing ServiceKind = "POLISHING"
)

// RecordState is the lifecycle state of a service record.
type RecordState string

const (
	StateInProgress RecordState = "IN_PROGRESS"
	StateReady      RecordState = "READY"
	StateDelivered  RecordState = "DELIVERED"
	StateCancelled  RecordState = "CANCELLED"
	StateAnnulled   RecordState = "ANNULLED"
)

// PaymentMethod is how a record was paid, when not settled via current account.
type PaymentMethod string

const (
	PaymentNone     PaymentMethod = "NONE"
	PaymentCash     PaymentMethod = "CASH"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// IsVoided reports whether the record is excluded from reporting aggregates.
func (s RecordState) IsVoided() bool {
	return s == StateCancelled || s == StateAnnulled
}

// ServiceRecord represents one vehicle-wash job.
// TotalPrice is resolved and frozen at intake; it is never recomputed from the
// live price list afterwards.
type ServiceRecord struct {
	RecordID         string          `json:"recordID"` // Primary Key (e.g., UUID)
	BranchID         string          `json:"branchID"` // FK -> branches.branch_id (NOT NULL)
	VehicleCategory  VehicleCategory `json:"vehicleCategory"`
	ServiceKinds     []ServiceKind   `json:"serviceKinds"` // Non-empty, unique
	ExtraDescription string          `json:"extraDescription"`
	ExtraAmount      decimal.Decimal `json:"extraAmount"` // Surcharge for extras, >= 0
	ClientName       string          `json:"clientName"`
	ClientPhone      string          `json:"clientPhone"`
	TotalPrice       decimal.Decimal `json:"totalPrice"` // Frozen at intake, >= 0
	Paid             bool            `json:"paid"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod"`
	// PaidViaAccount and PaymentMethod are mutually exclusive: an account-settled
	// record keeps PaymentMethod == NONE.
	PaidViaAccount bool        `json:"paidViaAccount"`
	AccountID      *string     `json:"accountID,omitempty"` // Current account debited at intake, if any
	PromotionID    *string     `json:"promotionID,omitempty"`
	BenefitID      *string     `json:"benefitID,omitempty"`
	State          RecordState `json:"state"`
	VoidReason     string      `json:"voidReason,omitempty"` // Cancellation/annulment reason
	ReadyAt        *time.Time  `json:"readyAt,omitempty"`
	DeliveredAt    *time.Time  `json:"deliveredAt,omitempty"`
	AuditFields
}

// LineItem is one resolved (kind, unit price) pair in a price breakdown.
type LineItem struct {
	Kind      ServiceKind     `json:"kind"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}
