package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// UsageCounter tracks admitted outreach actions per (consultant, channel,
// calendar day in the consultant's timezone). Absence of a row for today
// means zero; the day key rolling over is the implicit reset.
type UsageCounter struct {
	ConsultantID string    `json:"consultant_id" gorm:"primaryKey"`
	Channel      string    `json:"channel" gorm:"primaryKey"`
	Day          string    `json:"day" gorm:"primaryKey"` // YYYY-MM-DD in owner tz
	Count        int       `json:"count" gorm:"not null;default:0"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (UsageCounter) TableName() string { return "usage_counters" }

// DayKey formats t in loc as the counter's calendar-day key.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// ChannelPolicy holds per-channel scheduling limits.
type ChannelPolicy struct {
	MaxPerDay       int    `json:"max_per_day"`
	IntervalMinutes int    `json:"interval_minutes"` // minimum spacing between slots
	WorkingStart    string `json:"working_start"`    // "HH:MM"
	WorkingEnd      string `json:"working_end"`      // "HH:MM"
	WorkingDays     []int  `json:"working_days"`     // 1=Mon .. 7=Sun
}

// Interval returns the spacing interval as a duration.
func (p ChannelPolicy) Interval() time.Duration {
	return time.Duration(p.IntervalMinutes) * time.Minute
}

// ChannelPolicies is a jsonb map of channel name to policy.
type ChannelPolicies map[string]ChannelPolicy

func (p ChannelPolicies) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ChannelPolicies) Scan(value interface{}) error {
	if value == nil {
		*p = ChannelPolicies{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type for ChannelPolicies: %T", value)
	}
	return json.Unmarshal(b, p)
}

// RateLimitConfig is the per-consultant outreach policy: daily maxima,
// cooldowns, operating windows and the autonomy mode.
type RateLimitConfig struct {
	ConsultantID string          `json:"consultant_id" gorm:"primaryKey"`
	Channels     ChannelPolicies `json:"channels" gorm:"type:jsonb"`

	// MinScore is the compatibility-score floor for actionability.
	MinScore int `json:"min_score" gorm:"default:60"`

	// Cooldowns are fractional days keyed by lead status.
	CooldownNewDays         float64 `json:"cooldown_new_days" gorm:"default:1"`
	CooldownContactedDays   float64 `json:"cooldown_contacted_days" gorm:"default:3"`
	CooldownNegotiationDays float64 `json:"cooldown_negotiation_days" gorm:"default:7"`

	// Mode selects the creation path: "approval" parks new tasks in
	// waiting_approval, "autonomous" schedules them directly.
	Mode string `json:"mode" gorm:"default:approval"`

	// StrictSlots surfaces NoSlotFound instead of degrading to the last
	// conflicting candidate when the slot search bound is exhausted.
	StrictSlots bool `json:"strict_slots" gorm:"default:false"`

	Timezone  string    `json:"timezone" gorm:"default:UTC"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RateLimitConfig) TableName() string { return "rate_limit_configs" }

// Policy returns the channel policy, falling back to defaults when the
// channel has no explicit entry.
func (c *RateLimitConfig) Policy(channel string) ChannelPolicy {
	if p, ok := c.Channels[channel]; ok {
		return p
	}
	return DefaultPolicy(channel)
}

// Location resolves the configured timezone, defaulting to UTC.
func (c *RateLimitConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultPolicy mirrors the defaults applied when a consultant has never
// saved a config: weekday business hours, conservative daily maxima.
func DefaultPolicy(channel string) ChannelPolicy {
	p := ChannelPolicy{
		WorkingStart: "08:00",
		WorkingEnd:   "20:00",
		WorkingDays:  []int{1, 2, 3, 4, 5},
	}
	switch channel {
	case "voice":
		p.MaxPerDay = 10
		p.IntervalMinutes = 30
	case "whatsapp":
		p.MaxPerDay = 30
		p.IntervalMinutes = 10
	case "email":
		p.MaxPerDay = 20
		p.IntervalMinutes = 5
	default:
		p.MaxPerDay = 10
		p.IntervalMinutes = 15
	}
	return p
}

// DefaultConfig builds the fallback RateLimitConfig for a consultant
// without a saved row.
func DefaultConfig(consultantID string) *RateLimitConfig {
	return &RateLimitConfig{
		ConsultantID: consultantID,
		Channels: ChannelPolicies{
			"voice":    DefaultPolicy("voice"),
			"whatsapp": DefaultPolicy("whatsapp"),
			"email":    DefaultPolicy("email"),
		},
		MinScore:                60,
		CooldownNewDays:         1,
		CooldownContactedDays:   3,
		CooldownNegotiationDays: 7,
		Mode:                    "approval",
		Timezone:                "UTC",
	}
}
