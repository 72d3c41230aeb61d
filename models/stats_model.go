package models

type Stats struct {
	TotalTutors    int64 `json:"totalTutors"`
	TotalLanguages int64 `json:"totalLanguages"`
	TotalReviews   int64 `json:"totalReviews"`
	TotalUsers     int64 `json:"totalUsers"`
}
