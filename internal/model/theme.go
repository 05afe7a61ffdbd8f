package model

type Theme struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	RequiredLevel int    `json:"required_level"`
	AccentColor   string `json:"accent_color"`
}
