package domain

import "time"

// Config holds the relay thresholds handed to the engine at construction.
type Config struct {
	AdminID           int64
	Cooldown          time.Duration
	DailyLimitPerPair int
	DefaultBlockLinks bool
	InboxLimit        int
	LinkMarkers       []string
	Location          *time.Location
	BotUsername       string
}

func DefaultConfig() Config {
	return Config{
		Cooldown:          15 * time.Second,
		DailyLimitPerPair: 30,
		DefaultBlockLinks: true,
		InboxLimit:        12,
		LinkMarkers:       []string{"http://", "https://", "t.me/"},
		Location:          time.UTC,
	}
}

// IsAdmin reports whether id is the administrative identity. A zero admin disables admin actions.
func (c Config) IsAdmin(id int64) bool {
	return c.AdminID != 0 && c.AdminID == id
}

func (c Config) RatePolicy() RatePolicy {
	return RatePolicy{
		Cooldown:   c.Cooldown,
		DailyLimit: c.DailyLimitPerPair,
		Location:   c.Location,
	}
}
