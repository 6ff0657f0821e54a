package handlers

import "happythings/internal/models"

type loginRequest struct {
	Password string `json:"password"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type upsertEntryRequest struct {
	Things []string `json:"things"`
	Bonus  *string  `json:"bonus"`
}

type bonusRequest struct {
	Bonus      string `json:"bonus"`
	AdminToken string `json:"adminToken"`
}

type importRequest struct {
	Entries []models.EntryInput `json:"entries"`
}

// storeImageRequest is the JSON form of an image upload; imageData is base64.
type storeImageRequest struct {
	WeekStart  string `json:"weekStart"`
	ImageData  string `json:"imageData"`
	Prompt     string `json:"prompt"`
	ThingCount int    `json:"thingCount"`
}

type idResponse struct {
	ID string `json:"id"`
}

type storeImageResponse struct {
	StorageID string `json:"storageId"`
	URL       string `json:"url"`
}
