package schemas

import "github.com/Bessima/botform-intake/internal/models"

// SubmissionRequest описывает заявку один раз. Теги validate используются и
// сервером, и клиентом (предварительная проверка), и публикуются как
// набор правил через /api/submissions/schema.
type SubmissionRequest struct {
	RequesterName       string   `json:"requesterName" validate:"required,min=2"`
	RequesterEmail      string   `json:"requesterEmail" validate:"required,email"`
	EquityIndices       []string `json:"equityIndices"`
	OtherEquity         *string  `json:"otherEquity,omitempty"`
	Forex               []string `json:"forex"`
	OtherForex          *string  `json:"otherForex,omitempty"`
	Commodities         []string `json:"commodities"`
	OtherCommodities    *string  `json:"otherCommodities,omitempty"`
	CustomIndicators    *string  `json:"customIndicators,omitempty"`
	PremiumAccess       string   `json:"premiumAccess" validate:"required"`
	OtherAccess         *string  `json:"otherAccess,omitempty"`
	SpecialInstructions *string  `json:"specialInstructions,omitempty"`
}

// ServerAssignedFields нельзя передавать во входных данных.
var ServerAssignedFields = []string{"id", "referenceCode", "status", "createdAt"}

// ToNewSubmission заполняет списки пустыми значениями и добавляет
// сгенерированный код и начальный статус.
func (req SubmissionRequest) ToNewSubmission(referenceCode string) models.NewSubmission {
	return models.NewSubmission{
		ReferenceCode:       referenceCode,
		RequesterName:       req.RequesterName,
		RequesterEmail:      req.RequesterEmail,
		EquityIndices:       nonNil(req.EquityIndices),
		OtherEquity:         req.OtherEquity,
		Forex:               nonNil(req.Forex),
		OtherForex:          req.OtherForex,
		Commodities:         nonNil(req.Commodities),
		OtherCommodities:    req.OtherCommodities,
		CustomIndicators:    req.CustomIndicators,
		PremiumAccess:       req.PremiumAccess,
		OtherAccess:         req.OtherAccess,
		SpecialInstructions: req.SpecialInstructions,
		Status:              models.PendingStatus,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

type StatusRequest struct {
	Status *string `json:"status"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// FieldRule описывает правила одного поля в сериализуемом виде.
type FieldRule struct {
	Field    string   `json:"field"`
	Type     string   `json:"type"`
	Required bool     `json:"required"`
	Rules    []string `json:"rules,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type OptionsResponse struct {
	EquityIndices []Option `json:"equityIndices"`
	Forex         []Option `json:"forex"`
	Commodities   []Option `json:"commodities"`
	PremiumAccess []Option `json:"premiumAccess"`
}

type SchemaResponse struct {
	Fields         []FieldRule `json:"fields"`
	ServerAssigned []string    `json:"serverAssigned"`
}
