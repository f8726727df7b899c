package models

type HealthResponse struct {
	Status string `json:"status"`
}

type LoginResponse struct {
	User    UserInfo `json:"user"`
	Token   string   `json:"token"`
	IsAdmin bool     `json:"isAdmin"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type UploadResponse struct {
	ID         string           `json:"id"`
	Status     ConversionStatus `json:"status"`
	GLBPath    string           `json:"glbPath,omitempty"`
	USDZPath   string           `json:"usdzPath,omitempty"`
	DeviceType DeviceType       `json:"deviceType"`
}

type CleanupResponse struct {
	Success bool `json:"success"`
}
