package models

import (
	"time"
)

type MessageType string

const (
	TypeNotification MessageType = "notification"
	TypeSystem       MessageType = "system"
	TypeError        MessageType = "error"
)

// Packet is the envelope pushed over the notification websocket.
type Packet struct {
	Type      MessageType `json:"type"`
	From      string      `json:"from,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Credentials is the body of login and signup.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type FollowRequest struct {
	Token        string `json:"token"`
	UserToFollow string `json:"userToFollow"`
}

type PushTokenRequest struct {
	Token     string `json:"token"`
	PushToken string `json:"pushToken"`
}

type ImageURLsRequest struct {
	Token string `json:"token"`
}

type ImageURLsResponse struct {
	URLs []string `json:"urls"`
}

type SendImageRequest struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type UploadResponse struct {
	Location string `json:"location"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
