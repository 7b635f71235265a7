package handler

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type EventResponse struct {
	Status    string `json:"status"`
	Accepted  int    `json:"accepted"`
	RequestID string `json:"request_id"`
}
