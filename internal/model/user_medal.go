package model

type GrantMedalRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type GrantMedalResponse struct{}

type RevokeMedalRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type RevokeMedalResponse struct{}

type MedalOrder struct {
	UserID    string `json:"user_id"`
	MedalID   string `json:"medal_id"`
	SortOrder int    `json:"sort_order"`
}

type ReorderMedalsRequest struct {
	Medals []MedalOrder `json:"medals"`
}

type ReorderMedalsResponse struct{}

type GetUserMedalsRequest struct {
	UserID       string `json:"user_id"`
	Q            string `json:"q"`
	CategoryName string `json:"category_name"`
	Offset       int    `json:"offset"`
	Limit        int    `json:"limit"`
}

type GetUserMedalsResponse struct {
	UserMedals []UserMedal `json:"user_medals"`
	Total      int64       `json:"total"`
}

type GetUserMedalRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type GetUserMedalResponse UserMedal

type IsOwnedRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type IsOwnedResponse struct {
	Owned bool `json:"owned"`
}

type UpdateEarnedAtRequest struct {
	UserID   string `json:"user_id"`
	MedalID  string `json:"medal_id"`
	EarnedAt string `json:"earned_at"`
}

type UpdateEarnedAtResponse struct{}

type MarkTrackedAsEarnedRequest struct {
	MedalID string `json:"medal_id"`
}

type MarkTrackedAsEarnedResponse struct{}

type AddVouchRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type AddVouchResponse struct {
	ID string `json:"id"`
}

type RemoveVouchRequest struct {
	ID string `json:"id"`
}

type RemoveVouchResponse struct{}

type GetVouchesRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetVouchesResponse struct {
	Vouches []Vouch `json:"vouches"`
	Total   int64   `json:"total"`
}
