package models

import (
	"time"

	"github.com/google/uuid"
)

// QnaPost is a support question, optionally answered by an admin.
type QnaPost struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:qna_posts_user_id_idx"`
	Title      string     `gorm:"column:title;not null"`
	Question   string     `gorm:"column:question;not null"`
	Answer     *string    `gorm:"column:answer"`
	AnsweredBy *uuid.UUID `gorm:"column:answered_by;type:uuid"`
	AnsweredAt *time.Time `gorm:"column:answered_at"`
	IsPublic   bool       `gorm:"column:is_public;not null"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
