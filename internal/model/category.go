package model

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type CreateCategoryResponse struct {
	ID string `json:"id"`
}

type GetCategoriesRequest struct{}

type GetCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type UpdateCategoryRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UpdateCategoryResponse struct{}

type DeleteCategoryRequest struct {
	ID string `json:"id"`
}

type DeleteCategoryResponse struct{}
