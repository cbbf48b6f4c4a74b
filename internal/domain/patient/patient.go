package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Document  string `gorm:"column:document;type:varchar(20);uniqueIndex;not null" json:"document"`
	FirstName string `gorm:"column:first_name;type:varchar(100);not null" json:"first_name"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null" json:"last_name"`
	Age       int    `gorm:"column:age;not null" json:"age"`
	Email     string `gorm:"column:email;type:varchar(255);not null" json:"email"`
	Phone     string `gorm:"column:phone;type:varchar(20)" json:"phone"`
}

func (Patient) TableName() string {
	return "clinical.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type CreatePatientCommand struct {
	Document  string
	FirstName string
	LastName  string
	Age       int
	Email     string
	Phone     string
}

type UpdatePatientCommand struct {
	FirstName *string
	LastName  *string
	Age       *int
	Email     *string
	Phone     *string
}
