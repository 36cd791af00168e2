package models

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"not null" json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         UserRole   `gorm:"type:varchar(20);default:'student'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	// ExternalID is the account id at the identity provider, kept so a failed
	// local transaction can compensate by deleting the remote account.
	ExternalID string `gorm:"index" json:"-"`

	// Relations
	Enrollments []Enrollment `gorm:"foreignKey:UserID" json:"-"`
}
