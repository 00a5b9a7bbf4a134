package model

// PairingSession is one PIN -> token pairing lifecycle. A session is created
// when a sync server starts, mutated by authentication, and destroyed when the
// server stops. ExpiresAt bounds the authentication window only; the server's
// own lifetime is tracked separately.
type PairingSession struct {
	Pin        string `json:"pin"`
	Token      string `json:"token,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	ExpiresAt  int64  `json:"expiresAt"`
	IsActive   bool   `json:"isActive"`
	DeviceName string `json:"deviceName,omitempty"`
}

// SyncAuthRequest is the body of POST /sync/auth.
type SyncAuthRequest struct {
	Pin        string `json:"pin"`
	DeviceName string `json:"deviceName"`
}

// SyncAuthResponse is the reply to POST /sync/auth. ExpiresIn is in seconds.
type SyncAuthResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int64  `json:"expiresIn,omitempty"`
	Message   string `json:"message"`
}

// SyncDataPayload is the body of POST /sync/data: one batch of transactions
// submitted by a paired device.
type SyncDataPayload struct {
	Transactions []Transaction `json:"transactions"`
	DeviceName   string        `json:"deviceName"`
	Timestamp    int64         `json:"timestamp"`
}

// SyncDataResponse is the reply to POST /sync/data. Detected conflicts are
// data, not failures: Success stays true and the batch waits for approval.
type SyncDataResponse struct {
	Success         bool       `json:"success"`
	PendingApproval bool       `json:"pendingApproval"`
	Conflicts       []Conflict `json:"conflicts"`
	Message         string     `json:"message"`
}

// ConflictType discriminates the Conflict variants.
type ConflictType string

const (
	ConflictInsufficientBalance  ConflictType = "insufficientBalance"
	ConflictUnknownItem          ConflictType = "unknownItem"
	ConflictDuplicateTransaction ConflictType = "duplicateTransaction"
	ConflictInvalidAccount       ConflictType = "invalidAccount"
)

// InsufficientBalanceConflict carries the account state that rejects an expense.
type InsufficientBalanceConflict struct {
	AccountID      string  `json:"accountId"`
	AccountName    string  `json:"accountName"`
	CurrentBalance float64 `json:"currentBalance"`
	Required       float64 `json:"required"`
}

// ItemMatch is one fuzzy catalog candidate for an unresolved item name.
type ItemMatch struct {
	ItemID          string  `json:"itemId"`
	Name            string  `json:"name"`
	Brand           string  `json:"brand,omitempty"`
	SimilarityScore float64 `json:"similarityScore"`
}

// UnknownItemConflict carries the unresolved name and its ranked candidates.
type UnknownItemConflict struct {
	ItemName         string      `json:"itemName"`
	SuggestedMatches []ItemMatch `json:"suggestedMatches"`
}

// Conflict is a structured discrepancy between a submitted transaction and
// the current ledger state. Exactly one variant payload is set, selected by
// Type. Conflicts are produced read-only by detection and never mutated.
type Conflict struct {
	Type                ConflictType                 `json:"conflictType"`
	TransactionID       string                       `json:"transactionId"`
	Description         string                       `json:"description"`
	Suggestion          string                       `json:"suggestion,omitempty"`
	InsufficientBalance *InsufficientBalanceConflict `json:"insufficientBalance,omitempty"`
	UnknownItem         *UnknownItemConflict         `json:"unknownItem,omitempty"`
}

// ResolutionKind discriminates the ConflictResolution variants.
type ResolutionKind string

const (
	ResolutionSkipTransaction ResolutionKind = "skipTransaction"
	ResolutionAdjustAmount    ResolutionKind = "adjustAmount"
	ResolutionMapItem         ResolutionKind = "mapItem"
	ResolutionCreateNewItem   ResolutionKind = "createNewItem"
)

// ConflictResolution is a per-transaction decision supplied at approval time.
type ConflictResolution struct {
	Kind      ResolutionKind `json:"kind"`
	NewAmount float64        `json:"newAmount,omitempty"`
	ItemID    string         `json:"itemId,omitempty"`
}

// PendingSyncData is one received-but-unapplied batch. It is immutable once
// enqueued; an approve-or-reject decision removes it unconditionally.
type PendingSyncData struct {
	ID         string          `json:"id"`
	Payload    SyncDataPayload `json:"payload"`
	Conflicts  []Conflict      `json:"conflicts"`
	ReceivedAt int64           `json:"receivedAt"`
	DeviceName string          `json:"deviceName"`
}

// ApprovalResult reports the outcome of applying an approved batch. Applied
// lists the incoming transaction ids committed to the ledger; when FailedID is
// set, processing stopped there and earlier commits remain in place.
type ApprovalResult struct {
	Applied  []string `json:"applied"`
	Skipped  []string `json:"skipped"`
	FailedID string   `json:"failedId,omitempty"`
	Error    string   `json:"error,omitempty"`
}
