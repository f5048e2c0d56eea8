package domain

import "time"

type Feature struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type TripTime struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Prices struct {
	Adult Money `json:"adult"`
	Child Money `json:"child"`
}

type Trip struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Images      []string  `json:"images"`
	Features    []Feature `json:"features"`
	TripTime    TripTime  `json:"tripTime"`
	Prices      Prices    `json:"prices"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	MinTripImages = 1
	MaxTripImages = 5
)

func (t *Trip) CoverImage() string {
	if len(t.Images) == 0 {
		return ""
	}
	return t.Images[0]
}

func (t *Trip) Summary() *TripSummary {
	return &TripSummary{ID: t.ID, Name: t.Name, Images: t.Images}
}
