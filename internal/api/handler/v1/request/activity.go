package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateActivityRequest struct {
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	StartTime         time.Time `json:"start_time"`
	PointsParticipant int       `json:"points_participant"`
	PointsCreator     int       `json:"points_creator"`
	MaxParticipants   int       `json:"max_participants"`
}

func (req *CreateActivityRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.StartTime, validation.Required),
		// Zero is a valid value for the point and capacity fields,
		// so Required must not be applied here.
		validation.Field(&req.PointsParticipant, validation.Min(0)),
		validation.Field(&req.PointsCreator, validation.Min(0)),
		validation.Field(&req.MaxParticipants, validation.Min(0)),
	)
}
