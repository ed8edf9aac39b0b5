package models

import "gorm.io/datatypes"

type FeedbackModel struct {
	ID          string                               `gorm:"primaryKey;size:32"`
	UserID      string                               `gorm:"size:64;not null;index"`
	Email       string                               `gorm:"size:255;not null"`
	Rating      int                                  `gorm:"not null"`
	Comment     string                               `gorm:"type:text;not null"`
	Category    string                               `gorm:"size:64"`
	Status      string                               `gorm:"size:20;not null;index"`
	Attachments datatypes.JSONSlice[AttachmentModel] `gorm:"not null"`
	CreatedAt   int64                                `gorm:"autoCreateTime:milli;not null;index"`
	ReviewedAt  *int64
}

func (FeedbackModel) TableName() string {
	return "feedback"
}
