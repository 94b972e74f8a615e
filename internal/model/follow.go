package model

type FollowRequest struct {
	UserID string `json:"user_id"`
}

type FollowResponse struct{}

type UnfollowRequest struct {
	UserID string `json:"user_id"`
}

type UnfollowResponse struct{}

type IsFollowingRequest struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}

type IsFollowingResponse struct {
	Following bool `json:"following"`
}

type GetFollowersRequest struct {
	UserID string `json:"user_id"`
	Cursor string `json:"cursor"`
	Limit  int    `json:"limit"`
}

type GetFollowersResponse struct {
	Users      []FollowUser `json:"users"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Total      int64        `json:"total"`
}

type GetFollowingRequest struct {
	UserID string `json:"user_id"`
	Cursor string `json:"cursor"`
	Limit  int    `json:"limit"`
}

type GetFollowingResponse struct {
	Users      []FollowUser `json:"users"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Total      int64        `json:"total"`
}
