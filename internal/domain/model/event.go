package model

import "time"

type Event struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"` // Scheduled start; joining closes at this instant
	Location    string    `json:"location"`
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude]
	CreatorID   string    `json:"creator_id"`
	CoinsReward int       `json:"coins_reward"`
	CreatedAt   time.Time `json:"created_at"`

	// Derived fields, never stored: membership is the source of truth for the
	// participant count, and expiry is a function of the server clock.
	Participants int  `json:"participants"`
	Expired      bool `json:"expired"`
}
