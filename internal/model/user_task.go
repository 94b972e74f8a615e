package model

type CompleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

type CompleteTaskResponse struct{}

type UncompleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

type UncompleteTaskResponse struct{}

type GetCompletedCountsRequest struct {
	UserID   string   `json:"user_id"`
	MedalIDs []string `json:"medal_ids"`
}

type GetCompletedCountsResponse struct {
	Completed map[string]int64 `json:"completed"`
	Total     map[string]int64 `json:"total"`
}

type GetCompletedTasksRequest struct {
	UserID  string `json:"user_id"`
	MedalID string `json:"medal_id"`
}

type GetCompletedTasksResponse struct {
	Tasks []CompletedTask `json:"tasks"`
}
