package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type AwardPointsRequest struct {
	UserID uint   `json:"user_id"`
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

func (req *AwardPointsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserID, validation.Required),
		// Amount may be negative for deductions but never zero.
		validation.Field(&req.Amount, validation.Required),
		validation.Field(&req.Reason, validation.Required, validation.Length(1, 500)),
	)
}
