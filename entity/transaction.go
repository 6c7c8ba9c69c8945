package entity

import "strconv"

type TransactionStatus string

const (
	TransactionActive     TransactionStatus = "ACTIVE"
	TransactionProcessing TransactionStatus = "PROCESSING"
	TransactionFinished   TransactionStatus = "FINISHED"
)

// Finisher identifies who closed a transaction.
type Finisher string

const (
	FinisherCustomer  Finisher = "C"
	FinisherAttendant Finisher = "A"
)

// Transaction is one complete customer service request, from first
// contact until finish or cancel. At most one non-finished transaction
// exists per customer at any time.
type Transaction struct {
	TransactionID int64 `json:"transaction_id" bson:"transaction_id"`
	// Subject is the ordered intake log, a JSON-serialized array of the
	// raw message envelopes collected before the customer sent "fim".
	Subject         string            `json:"subject" bson:"subject"`
	Status          TransactionStatus `json:"status" bson:"status"`
	Initiated       int64             `json:"initiated" bson:"initiated"`
	StartProcessing int64             `json:"start_processing" bson:"start_processing"`
	Finished        int64             `json:"finished" bson:"finished"`
	Protocol        string            `json:"protocol" bson:"protocol"`
	Finisher        Finisher          `json:"finisher" bson:"finisher"`
	CustomerID      int64             `json:"customer_id" bson:"customer_id"`
	AttendantID     int64             `json:"attendant_id" bson:"attendant_id"`
	SectorID        int64             `json:"sector_id" bson:"sector_id"`
}

// Open reports whether the transaction still holds the customer's slot.
func (t *Transaction) Open() bool {
	return t.Status == TransactionActive || t.Status == TransactionProcessing
}

// ComputeProtocol derives the human-facing ticket number: the initiated
// timestamp truncated to seconds, a dash, and the transaction id.
func (t *Transaction) ComputeProtocol() string {
	return strconv.FormatInt(t.Initiated/1000, 10) + "-" + strconv.FormatInt(t.TransactionID, 10)
}
