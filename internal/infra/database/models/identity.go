package models

import "time"

type Identity struct {
	UserID      int64     `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	Code        string    `json:"code" gorm:"type:text;not null;uniqueIndex"`
	AnonEnabled bool      `json:"anonEnabled" gorm:"not null"`
	BlockLinks  bool      `json:"blockLinks" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null"`
}

func (Identity) TableName() string { return "identities" }

// Block is directional: RecipientID refuses messages from SenderID.
type Block struct {
	RecipientID int64     `json:"recipientId" gorm:"primaryKey;autoIncrement:false"`
	SenderID    int64     `json:"senderId" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt   time.Time `json:"createdAt" gorm:"not null"`
}

func (Block) TableName() string { return "blocks" }

type GlobalBan struct {
	UserID    int64     `json:"userId" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

func (GlobalBan) TableName() string { return "global_bans" }

type PendingIntent struct {
	SenderID  int64     `json:"senderId" gorm:"primaryKey;autoIncrement:false"`
	TargetID  int64     `json:"targetId" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

func (PendingIntent) TableName() string { return "pending_intents" }
