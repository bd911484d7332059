package shared

// TransactionType defines wallet ledger operations
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// FailureReason labels rejected booking operations for metrics and logs
type FailureReason string

const (
	FailureReasonFlightNotFound    FailureReason = "FLIGHT_NOT_FOUND"
	FailureReasonUserNotFound      FailureReason = "USER_NOT_FOUND"
	FailureReasonNoSeats           FailureReason = "NO_SEATS_AVAILABLE"
	FailureReasonInsufficientFunds FailureReason = "INSUFFICIENT_FUNDS"
	FailureReasonInvalidInput      FailureReason = "INVALID_INPUT"
	FailureReasonAlreadyCancelled  FailureReason = "ALREADY_CANCELLED"
	FailureReasonBookingNotFound   FailureReason = "BOOKING_NOT_FOUND"
	FailureReasonPersistence       FailureReason = "PERSISTENCE_FAILURE"
)
