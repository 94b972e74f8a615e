package model

type GetPopularMedalsRequest struct {
	Limit int `json:"limit"`
}

type GetPopularMedalsResponse struct {
	Medals []PopularMedal `json:"medals"`
}
