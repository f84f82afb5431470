package request

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{
		Email:           "alice@example.com",
		Password:        "secret1234",
		ConfirmPassword: "secret1234",
		Name:            "Alice",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *SignupRequest)
	}{
		{"missing email", func(r *SignupRequest) { r.Email = "" }},
		{"bad email", func(r *SignupRequest) { r.Email = "not-an-email" }},
		{"short password", func(r *SignupRequest) { r.Password, r.ConfirmPassword = "ab1", "ab1" }},
		{"letters only", func(r *SignupRequest) { r.Password, r.ConfirmPassword = "passwordonly", "passwordonly" }},
		{"digits only", func(r *SignupRequest) { r.Password, r.ConfirmPassword = "1234567890", "1234567890" }},
		{"confirm mismatch", func(r *SignupRequest) { r.ConfirmPassword = "different1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "alice@example.com", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "alice@example.com", Password: ""}).Validate())
}

func TestCreateActivityRequest_Validate(t *testing.T) {
	valid := CreateActivityRequest{
		Title:     "Bouldering",
		StartTime: time.Now().Add(24 * time.Hour),
	}
	assert.NoError(t, valid.Validate(), "zero points and unlimited capacity are valid")

	missingTitle := valid
	missingTitle.Title = ""
	assert.Error(t, missingTitle.Validate())

	missingStart := valid
	missingStart.StartTime = time.Time{}
	assert.Error(t, missingStart.Validate())

	negativePoints := valid
	negativePoints.PointsParticipant = -1
	assert.Error(t, negativePoints.Validate())

	negativeCapacity := valid
	negativeCapacity.MaxParticipants = -1
	assert.Error(t, negativeCapacity.Validate())
}

func TestAwardPointsRequest_Validate(t *testing.T) {
	assert.NoError(t, (&AwardPointsRequest{UserID: 1, Amount: 10, Reason: "bonus"}).Validate())
	assert.NoError(t, (&AwardPointsRequest{UserID: 1, Amount: -10, Reason: "penalty"}).Validate())
	assert.Error(t, (&AwardPointsRequest{UserID: 0, Amount: 10, Reason: "bonus"}).Validate())
	assert.Error(t, (&AwardPointsRequest{UserID: 1, Amount: 0, Reason: "bonus"}).Validate())
	assert.Error(t, (&AwardPointsRequest{UserID: 1, Amount: 10, Reason: ""}).Validate())
}
