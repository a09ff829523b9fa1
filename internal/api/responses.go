package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database,omitempty" example:"ok"`
	Queue    string `json:"queue,omitempty" example:"ok"`
	Pending  int64  `json:"pending_notifications" example:"0"`
}

type PageParams struct {
	Limit  int `form:"limit" binding:"omitempty,gte=1,lte=500"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}
