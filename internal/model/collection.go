package model

type CreateCollectionRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	MedalIDs    []string `json:"medal_ids"`
}

type CreateCollectionResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

// UpdateCollectionRequest replaces the membership only when MedalIDs is
// present in the request.
type UpdateCollectionRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	MedalIDs    []string `json:"medal_ids"`
}

type UpdateCollectionResponse struct{}

type DeleteCollectionRequest struct {
	ID string `json:"id"`
}

type DeleteCollectionResponse struct{}

type GetCollectionRequest struct {
	ID string `json:"id"`
}

type GetCollectionResponse Collection

type GetCollectionsRequest struct {
	OwnerID string `json:"owner_id"`
}

type GetCollectionsResponse struct {
	Collections []Collection `json:"collections"`
}
