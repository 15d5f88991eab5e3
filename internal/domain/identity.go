package domain

import "time"

// Identity is a platform participant together with its inbox settings.
type Identity struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	AnonEnabled bool      `json:"anonEnabled"`
	BlockLinks  bool      `json:"blockLinks"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Settings struct {
	Code        string `json:"code"`
	AnonEnabled bool   `json:"anonEnabled"`
	BlockLinks  bool   `json:"blockLinks"`
}

func (i Identity) Settings() Settings {
	return Settings{
		Code:        i.Code,
		AnonEnabled: i.AnonEnabled,
		BlockLinks:  i.BlockLinks,
	}
}

type PendingIntent struct {
	SenderID  int64     `json:"senderId"`
	TargetID  int64     `json:"targetId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Stats struct {
	Identities int64 `json:"identities"`
	Threads    int64 `json:"threads"`
	Bans       int64 `json:"bans"`
}
