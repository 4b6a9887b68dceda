package models

import "time"

type Permission struct {
	ID             int       `json:"id"`
	GrantedUserID  string    `json:"grantedUserId"`
	OwnerUserID    string    `json:"ownerUserId"`
	ResourceType   string    `json:"resourceType"`
	PermissionType string    `json:"permissionType"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt,omitempty"`
}
