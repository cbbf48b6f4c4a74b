package doctor

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Doctor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Document   string `gorm:"column:document;type:varchar(20);uniqueIndex;not null" json:"document"`
	Name       string `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Speciality string `gorm:"column:speciality;type:varchar(50);not null" json:"speciality"`
	Email      string `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Phone      string `gorm:"column:phone;type:varchar(20)" json:"phone"`
}

func (Doctor) TableName() string {
	return "clinical.doctors"
}

// FullInfo is the display label used in confirmations and listings.
func (d *Doctor) FullInfo() string {
	return strings.TrimSpace(d.Name + " - " + d.Speciality)
}

type CreateDoctorCommand struct {
	Document   string
	Name       string
	Speciality string
	Email      string
	Phone      string
}

type UpdateDoctorCommand struct {
	Name       *string
	Speciality *string
	Email      *string
	Phone      *string
}
