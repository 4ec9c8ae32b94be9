package comment

import "time"

const MaxLength = 1000

type Comment struct {
	ID         uint      `json:"id"`
	ProductID  uint      `json:"product_id"`
	UserID     uint      `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListResult struct {
	Items      []*Comment `json:"items"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalCount int        `json:"total_count"`
}
