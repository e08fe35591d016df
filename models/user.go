package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultBio = "Passionate learner who enjoys challenging quizzes"

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:150;not null" json:"name"`
	Email          string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"type:text;not null" json:"-"`
	Bio            string    `gorm:"type:text" json:"bio"`
	AvatarImageURL string    `gorm:"type:text" json:"avatarImageURL"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Results []Result `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Bio == "" {
		u.Bio = DefaultBio
	}
	return nil
}
