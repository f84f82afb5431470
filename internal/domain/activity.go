package domain

import "time"

type ActivityStatus string

const (
	ActivityOpen      ActivityStatus = "open"
	ActivityCompleted ActivityStatus = "completed"
	ActivityCancelled ActivityStatus = "cancelled"
)

// ActivityFilter selects which slice of activities a listing returns.
type ActivityFilter string

const (
	FilterAll       ActivityFilter = "all"
	FilterUpcoming  ActivityFilter = "upcoming"
	FilterCompleted ActivityFilter = "completed"
)

type Activity struct {
	ID                uint           `json:"id"`
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	StartTime         time.Time      `json:"start_time"`
	Status            ActivityStatus `json:"status"`
	PointsParticipant int            `json:"points_participant"`
	PointsCreator     int            `json:"points_creator"`
	MaxParticipants   int            `json:"max_participants"` // 0 means unlimited
	CreatorID         uint           `json:"creator"`
	Creator           *User          `json:"creator_user,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// HasCapacity reports whether one more participant fits given the current count.
func (a *Activity) HasCapacity(current int64) bool {
	return a.MaxParticipants == 0 || current < int64(a.MaxParticipants)
}

func (a *Activity) IsOpen() bool {
	return a.Status == ActivityOpen
}
