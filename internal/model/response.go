package model

type ErrorResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}
