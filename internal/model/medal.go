package model

type TaskInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CreateMedalRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Status      string      `json:"status"`
	Price       string      `json:"price"`
	CategoryIDs []string    `json:"category_ids"`
	Tasks       []TaskInput `json:"tasks"`
}

type CreateMedalResponse struct {
	ID string `json:"id"`
}

// UpdateMedalRequest leaves a field unchanged when it is empty. CategoryIDs
// and Tasks are replaced only when they are present in the request.
type UpdateMedalRequest struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Status      string      `json:"status"`
	Price       string      `json:"price"`
	CategoryIDs []string    `json:"category_ids"`
	Tasks       []TaskInput `json:"tasks"`
}

type UpdateMedalResponse struct{}

type DeleteMedalRequest struct {
	ID string `json:"id"`
}

type DeleteMedalResponse struct{}

type GetMedalRequest struct {
	ID string `json:"id"`
}

type GetMedalResponse struct {
	Medal  Medal `json:"medal"`
	Owners int64 `json:"owners"`
}

type GetMedalsRequest struct {
	Q            string `json:"q"`
	Status       string `json:"status"`
	CategoryName string `json:"category_name"`
	Offset       int    `json:"offset"`
	Limit        int    `json:"limit"`
}

type GetMedalsResponse struct {
	Medals []Medal `json:"medals"`
}
