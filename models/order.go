package models

import "time"

type Order struct {
	ID        string     `json:"id"`
	VisitorID string     `json:"visitor_id"`
	Items     []LineItem `json:"items"`
	Total     int        `json:"total"`
	ItemCount int        `json:"item_count"`
	PlacedAt  time.Time  `json:"placed_at"`
}
