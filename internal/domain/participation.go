package domain

import "time"

type Participation struct {
	ID         uint      `json:"id"`
	ActivityID uint      `json:"activity"`
	UserID     uint      `json:"user"`
	User       *User     `json:"user_detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
