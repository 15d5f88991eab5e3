package models

import "time"

type Thread struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	RecipientID int64      `json:"recipientId" gorm:"not null;uniqueIndex:idx_threads_pair,priority:1;index:idx_threads_recipient"`
	SenderID    int64      `json:"senderId" gorm:"not null;uniqueIndex:idx_threads_pair,priority:2"`
	CreatedAt   time.Time  `json:"createdAt" gorm:"not null"`
	ActiveAt    *time.Time `json:"updatedAt,omitempty" gorm:"column:updated_at"`
}

func (Thread) TableName() string { return "threads" }

type RatePair struct {
	SenderID    int64     `json:"senderId" gorm:"primaryKey;autoIncrement:false"`
	RecipientID int64     `json:"recipientId" gorm:"primaryKey;autoIncrement:false"`
	LastSentAt  time.Time `json:"lastSentAt" gorm:"not null"`
	Day         string    `json:"day" gorm:"type:text;not null"`
	DayCount    int       `json:"dayCount" gorm:"not null"`
}

func (RatePair) TableName() string { return "rate_pairs" }
