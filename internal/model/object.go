package model

import "time"

const DefaultTimeLayout string = time.RFC3339Nano

type AccessToken struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Image    string `json:"image"`
	Role     string `json:"role,omitempty"`
}

type ShortUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Medal struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Status      string     `json:"status"`
	Price       string     `json:"price,omitempty"`
	Tasks       []Task     `json:"tasks,omitempty"`
	Categories  []Category `json:"categories,omitempty"`
	CreatedAt   string     `json:"created_at"`
}

type UserMedal struct {
	UserID     string `json:"user_id"`
	Medal      Medal  `json:"medal"`
	EarnedAt   string `json:"earned_at"`
	SortOrder  int    `json:"sort_order"`
	GiftedByID string `json:"gifted_by_id,omitempty"`
}

type Vouch struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MedalID   string    `json:"medal_id"`
	VouchedBy ShortUser `json:"vouched_by"`
	CreatedAt string    `json:"created_at"`
}

type CompletedTask struct {
	TaskID      string `json:"task_id"`
	CompletedAt string `json:"completed_at"`
}

type Gift struct {
	ID         string    `json:"id"`
	Medal      Medal     `json:"medal"`
	GiftedBy   ShortUser `json:"gifted_by"`
	GiftedTo   ShortUser `json:"gifted_to"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  string    `json:"created_at"`
	AcceptedAt string    `json:"accepted_at,omitempty"`
}

type TrackedMedal struct {
	Medal     Medal  `json:"medal"`
	CreatedAt string `json:"created_at"`
}

type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Owner       ShortUser `json:"owner"`
	Medals      []Medal   `json:"medals"`
	CreatedAt   string    `json:"created_at"`
}

type TrackedCollection struct {
	Collection Collection `json:"collection"`
	StartedAt  string     `json:"started_at"`
}

type FollowUser struct {
	User       ShortUser `json:"user"`
	FollowedAt string    `json:"followed_at"`
}

type PopularMedal struct {
	Medal  Medal `json:"medal"`
	Owners int64 `json:"owners"`
}
