package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tablemesh/kds-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	StaffID   uuid.UUID
	BranchID  uuid.UUID
	Role      enums.StaffRole
	StaffName string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued by the platform's auth
// service and consumed here to scope every request to a branch.
type AccessTokenClaims struct {
	StaffID   uuid.UUID       `json:"staff_id"`
	BranchID  uuid.UUID       `json:"branch_id"`
	Role      enums.StaffRole `json:"role"`
	StaffName string          `json:"staff_name,omitempty"`
	jwt.RegisteredClaims
}
