package model

type TrackMedalRequest struct {
	MedalID string `json:"medal_id"`
}

type TrackMedalResponse struct{}

type UntrackMedalRequest struct {
	MedalID string `json:"medal_id"`
}

type UntrackMedalResponse struct{}

type IsTrackedRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type IsTrackedResponse struct {
	Tracked bool `json:"tracked"`
}

type GetTrackedMedalsRequest struct {
	UserID string `json:"user_id"`
}

type GetTrackedMedalsResponse struct {
	Medals []TrackedMedal `json:"medals"`
}

type TrackCollectionRequest struct {
	CollectionID string `json:"collection_id"`
}

type TrackCollectionResponse struct{}

type UntrackCollectionRequest struct {
	CollectionID string `json:"collection_id"`
}

type UntrackCollectionResponse struct{}

type IsTrackingCollectionRequest struct {
	UserID       string `json:"user_id"`
	CollectionID string `json:"collection_id"`
}

type IsTrackingCollectionResponse struct {
	Tracked bool `json:"tracked"`
}

type GetTrackedCollectionsRequest struct {
	UserID string `json:"user_id"`
}

type GetTrackedCollectionsResponse struct {
	Collections []TrackedCollection `json:"collections"`
}
