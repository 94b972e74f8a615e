package model

type SendGiftRequest struct {
	MedalID    string `json:"medal_id"`
	GiftedToID string `json:"gifted_to_id"`
	Message    string `json:"message"`
}

type SendGiftResponse struct {
	ID string `json:"id"`
}

type AcceptGiftRequest struct {
	ID string `json:"id"`
}

type AcceptGiftResponse struct{}

type RejectGiftRequest struct {
	ID string `json:"id"`
}

type RejectGiftResponse struct{}

type CancelGiftRequest struct {
	ID string `json:"id"`
}

type CancelGiftResponse struct{}

type GetReceivedGiftsRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type GetReceivedGiftsResponse struct {
	Gifts []Gift `json:"gifts"`
}

type GetSentGiftsRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type GetSentGiftsResponse struct {
	Gifts []Gift `json:"gifts"`
}

type AuditGiftsRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Username string `json:"username"`
	Sort     string `json:"sort"`
}

type AuditGiftsResponse struct {
	Gifts []Gift `json:"gifts"`
}
