package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/constants"
)

// User is an authenticated dashboard account. The assignment set lists the
// companies the user may read; chairman-role users ignore it and see all.
type User struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email              string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	Role               constants.Role `gorm:"type:varchar(20);not null" json:"role"`
	AssignedCompanyIDs []uuid.UUID    `gorm:"serializer:json" json:"assigned_company_ids"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// CanAccessCompany applies the role capability set to a single company.
func (u *User) CanAccessCompany(companyID uuid.UUID) bool {
	if u.Role.ViewsAll() {
		return true
	}
	for _, id := range u.AssignedCompanyIDs {
		if id == companyID {
			return true
		}
	}
	return false
}
