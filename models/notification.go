package models

import (
	"encoding/json"
	"time"
)

// Notification is a single entry in the storefront notification feed.
type Notification struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Image     string `json:"image"`
	Link      string `json:"link"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

// NewNotification builds an unread notification stamped with the current
// time. The ID is assigned by the store on insert.
func NewNotification(title, message, image, link string) Notification {
	return Notification{
		Title:     title,
		Message:   message,
		Image:     image,
		Link:      link,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// MetafieldNotification is the shape stored inside the Shopify customer
// metafield (namespace "notifications", key "messages"). The whole list is
// serialized as one JSON string value.
type MetafieldNotification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Image   string `json:"image,omitempty"`
	Link    string `json:"link,omitempty"`
	Date    string `json:"date"`
}

// ParseMetafieldList decodes the metafield value. A missing, empty or
// malformed value degrades to an empty list instead of failing the caller.
func ParseMetafieldList(value string) []MetafieldNotification {
	if value == "" {
		return []MetafieldNotification{}
	}
	var list []MetafieldNotification
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return []MetafieldNotification{}
	}
	return list
}

// EncodeMetafieldList serializes the list back into the metafield value.
func EncodeMetafieldList(list []MetafieldNotification) (string, error) {
	if list == nil {
		list = []MetafieldNotification{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
