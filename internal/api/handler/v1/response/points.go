package response

type AwardPointsResponse struct {
	Message       string `json:"message"`
	UserID        uint   `json:"user_id"`
	PointsAwarded int    `json:"points_awarded"`
	TransactionID uint   `json:"transaction_id"`
}
