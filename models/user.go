package models

type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Status         string `json:"status"` // pending, approved, rejected
	IsAdmin        bool   `json:"isAdmin"`
	Role           string `json:"role"`
	NotifyUpcoming bool   `json:"notifyUpcoming"`
}
