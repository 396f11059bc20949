package model

type TargetType string
type PaymentStatus string

const (
	TargetTypeClub  TargetType = "club"
	TargetTypeEvent TargetType = "event"
)

func (t TargetType) Valid() bool {
	return t == TargetTypeClub || t == TargetTypeEvent
}

// TransactionPrefix is the first segment of generated transaction ids.
func (t TargetType) TransactionPrefix() string {
	switch t {
	case TargetTypeClub:
		return "CLUB"
	case TargetTypeEvent:
		return "EVENT"
	default:
		return "PAY"
	}
}

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
	PaymentStatusFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusFailed:
		return true
	}
	return false
}
