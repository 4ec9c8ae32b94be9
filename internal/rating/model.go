package rating

import "time"

const (
	MinValue = 1
	MaxValue = 5
)

type Rating struct {
	UserID    uint      `json:"user_id"`
	ProductID uint      `json:"product_id"`
	Value     int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Summary struct {
	ProductID    uint        `json:"product_id"`
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}
