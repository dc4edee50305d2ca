package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionModel mirrors a transactions row. Nullable amounts use
// NullDecimal so NULL survives the round trip.
type TransactionModel struct {
	ID                string
	RemoteID          *int64
	PaymentLinkID     *int64
	MerchantReference string
	Type              string
	Amount            decimal.Decimal
	Currency          string
	AuthorizedAmount  decimal.NullDecimal
	CapturedAmount    decimal.NullDecimal
	RefundedAmount    decimal.Decimal
	NetAmount         decimal.NullDecimal
	FeeAmount         decimal.NullDecimal
	SettledAmount     decimal.NullDecimal
	Status            string
	FailureReason     string
	PaymentURL        string
	PaymentMethod     string
	CardBrand         string
	MaskedCard        string
	TerminalID        *string
	ReferenceType     *string
	ReferenceName     *string
	CustomerID        string
	Invoice           *string
	Annotation        string
	RawSnapshot       []byte
	AuthorizedAt      *time.Time
	CompletedAt       *time.Time
	VoidedAt          *time.Time
	Archived          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type LineItemModel struct {
	Position       int
	Name           string
	UniqueID       string
	SKU            string
	Type           string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
}

type RefundModel struct {
	ID            string
	TransactionID string
	RemoteID      *int64
	ExternalID    string
	Amount        decimal.Decimal
	State         string
	Reason        string
	SucceededAt   *time.Time
	RawSnapshot   []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TerminalModel struct {
	ID                   string
	RemoteID             int64
	Identifier           string
	Name                 string
	Type                 string
	DefaultCurrency      string
	SerialNumber         *string
	ConfigurationVersion *int64
	LocationVersion      *int64
	Status               string
	IsDefault            bool
	LastSyncedAt         *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type WebhookLogModel struct {
	ID            string
	EventType     string
	EntityType    string
	EntityID      *int64
	SpaceID       *int64
	Headers       map[string]string
	Payload       []byte
	Status        string
	TransactionID *string
	HTTPStatus    *int
	ErrorMessage  string
	ReceivedAt    time.Time
	ProcessedAt   *time.Time
}
