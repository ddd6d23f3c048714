package models

import "time"

type SubmissionStatus string

const (
	PendingStatus   SubmissionStatus = "pending"
	CompletedStatus SubmissionStatus = "completed"
	FailedStatus    SubmissionStatus = "failed"
)

// KnownStatuses перечисляет статусы, которые понимает интерфейс.
var KnownStatuses = []SubmissionStatus{PendingStatus, CompletedStatus, FailedStatus}

func (s SubmissionStatus) IsKnown() bool {
	for _, known := range KnownStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Submission struct {
	ID                  int64            `json:"id"`
	ReferenceCode       string           `json:"referenceCode"`
	RequesterName       string           `json:"requesterName"`
	RequesterEmail      string           `json:"requesterEmail"`
	EquityIndices       []string         `json:"equityIndices"`
	OtherEquity         *string          `json:"otherEquity"`
	Forex               []string         `json:"forex"`
	OtherForex          *string          `json:"otherForex"`
	Commodities         []string         `json:"commodities"`
	OtherCommodities    *string          `json:"otherCommodities"`
	CustomIndicators    *string          `json:"customIndicators"`
	PremiumAccess       string           `json:"premiumAccess"`
	OtherAccess         *string          `json:"otherAccess"`
	SpecialInstructions *string          `json:"specialInstructions"`
	Status              SubmissionStatus `json:"status"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// NewSubmission содержит проверенные поля заявки без id и createdAt,
// которые назначает хранилище.
type NewSubmission struct {
	ReferenceCode       string
	RequesterName       string
	RequesterEmail      string
	EquityIndices       []string
	OtherEquity         *string
	Forex               []string
	OtherForex          *string
	Commodities         []string
	OtherCommodities    *string
	CustomIndicators    *string
	PremiumAccess       string
	OtherAccess         *string
	SpecialInstructions *string
	Status              SubmissionStatus
}
