package model

var (
	GiftSentTopic      = "GIFT_SENT"
	GiftAcceptedTopic  = "GIFT_ACCEPTED"
	GiftRejectedTopic  = "GIFT_REJECTED"
	GiftCancelledTopic = "GIFT_CANCELLED"
	MedalGrantedTopic  = "MEDAL_GRANTED"
	MedalRevokedTopic  = "MEDAL_REVOKED"
	UserFollowedTopic  = "USER_FOLLOWED"
)

type GiftEvent struct {
	GiftID     string `json:"gift_id"`
	MedalID    string `json:"medal_id"`
	GiftedByID string `json:"gifted_by_id"`
	GiftedToID string `json:"gifted_to_id"`
	Status     string `json:"status"`
}

type OwnershipEvent struct {
	UserID     string `json:"user_id"`
	MedalID    string `json:"medal_id"`
	GiftedByID string `json:"gifted_by_id,omitempty"`
}

type FollowEvent struct {
	FollowerID  string `json:"follower_id"`
	FollowingID string `json:"following_id"`
}
