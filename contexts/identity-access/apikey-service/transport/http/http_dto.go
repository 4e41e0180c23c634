package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type IssueKeyRequest struct {
	Owner     string `json:"owner"`
	RateLimit int    `json:"rateLimit"`
}

type APIKeyResponse struct {
	Key       string     `json:"key"`
	Owner     string     `json:"owner"`
	RateLimit int        `json:"rateLimit"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	LastUsed  *time.Time `json:"lastUsed,omitempty"`
}

type UsageResponse struct {
	Owner        string `json:"owner"`
	RateLimit    int    `json:"rateLimit"`
	CurrentUsage int64  `json:"currentUsage"`
	ResetIn      int64  `json:"resetIn"`
}
