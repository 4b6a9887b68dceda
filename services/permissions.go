package services

import (
	"database/sql"
	"fmt"
	"time"

	"santodinheiro/database"
	"santodinheiro/logging"
	"santodinheiro/models"
)

// RoleHierarchy defines the hierarchy of roles in the system.
// Higher numbers have more permissions.
var RoleHierarchy = map[string]int{
	"user":       1,
	"admin":      2,
	"superadmin": 3,
}

// IsRoleAtLeast checks if a role is at least at the specified level
func IsRoleAtLeast(userRole, requiredRole string) bool {
	userLevel, userExists := RoleHierarchy[userRole]
	requiredLevel, requiredExists := RoleHierarchy[requiredRole]

	if !userExists || !requiredExists {
		return userRole == requiredRole
	}

	return userLevel >= requiredLevel
}

// GetUserRole gets the role of a user
func GetUserRole(userID string) (string, error) {
	var role sql.NullString
	err := database.DB.QueryRow("SELECT role FROM users WHERE id = ?", userID).Scan(&role)
	if err != nil {
		return "", err
	}

	if !role.Valid || role.String == "" {
		return "user", nil
	}

	return role.String, nil
}

// IsAdmin checks if a user is an admin or super admin
func IsAdmin(userID string) (bool, error) {
	role, err := GetUserRole(userID)
	if err != nil {
		return false, err
	}

	return IsRoleAtLeast(role, "admin"), nil
}

// SetUserRole sets the role of a user. Only superadmins can create other
// superadmins; admins cannot touch other admins and nobody can demote
// themselves.
func SetUserRole(actorID, targetUserID, newRole string) error {
	if _, exists := RoleHierarchy[newRole]; !exists {
		return fmt.Errorf("invalid role: %s", newRole)
	}

	actorRole, err := GetUserRole(actorID)
	if err != nil {
		return fmt.Errorf("failed to get actor role: %w", err)
	}

	targetRole, err := GetUserRole(targetUserID)
	if err != nil {
		return fmt.Errorf("failed to get target user role: %w", err)
	}

	if actorRole == "user" && (actorID != targetUserID || newRole != "user") {
		return fmt.Errorf("insufficient permissions to change roles")
	}

	if newRole == "superadmin" && actorRole != "superadmin" {
		return fmt.Errorf("only superadmins can create other superadmins")
	}

	if actorID == targetUserID && RoleHierarchy[newRole] < RoleHierarchy[actorRole] {
		return fmt.Errorf("cannot demote yourself")
	}

	if actorRole == "admin" && (targetRole == "admin" || targetRole == "superadmin") {
		return fmt.Errorf("admins cannot change roles of other admins or superadmins")
	}

	_, err = database.DB.Exec("UPDATE users SET role = ? WHERE id = ?", newRole, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	isAdmin := newRole == "admin" || newRole == "superadmin"
	_, err = database.DB.Exec("UPDATE users SET is_admin = ? WHERE id = ?", isAdmin, targetUserID)
	if err != nil {
		return fmt.Errorf("failed to update is_admin flag: %w", err)
	}

	return nil
}

// GrantPermission grants a collaborator permission from one user to another,
// e.g. letting a spouse read or edit the granter's months.
func GrantPermission(granterID, granteeID, resourceType, permissionType string, expiresAt *time.Time) error {
	if permissionType != models.PermissionRead && permissionType != models.PermissionWrite {
		return fmt.Errorf("invalid permission type: %s", permissionType)
	}

	isGranterAdmin, err := IsAdmin(granterID)
	if err != nil {
		return fmt.Errorf("failed to check granter admin status: %w", err)
	}

	if !isGranterAdmin && granterID == granteeID {
		return fmt.Errorf("cannot grant a permission to yourself")
	}

	query := `
		INSERT INTO permissions
		(granted_user_id, owner_user_id, resource_type, permission_type, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(granted_user_id, owner_user_id, resource_type, permission_type)
		DO UPDATE SET expires_at = excluded.expires_at
	`

	_, err = database.DB.Exec(query, granteeID, granterID, resourceType, permissionType, time.Now(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to grant permission: %w", err)
	}

	return nil
}

// RevokePermission revokes a permission
func RevokePermission(revokerID, granteeID, ownerID, resourceType, permissionType string) error {
	isRevokerAdmin, err := IsAdmin(revokerID)
	if err != nil {
		return fmt.Errorf("failed to check revoker admin status: %w", err)
	}

	if !isRevokerAdmin && revokerID != ownerID {
		return fmt.Errorf("insufficient permissions to revoke access")
	}

	_, err = database.DB.Exec(
		"DELETE FROM permissions WHERE granted_user_id = ? AND owner_user_id = ? AND resource_type = ? AND permission_type = ?",
		granteeID, ownerID, resourceType, permissionType)
	if err != nil {
		return fmt.Errorf("failed to revoke permission: %w", err)
	}

	return nil
}

// GetUserPermissions gets all permissions granted to a user
func GetUserPermissions(userID string) ([]models.Permission, error) {
	rows, err := database.DB.Query(`
		SELECT id, granted_user_id, owner_user_id, resource_type, permission_type, created_at, expires_at
		FROM permissions
		WHERE granted_user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}
	defer rows.Close()

	var permissions []models.Permission
	for rows.Next() {
		var p models.Permission
		var expiresAt sql.NullTime

		err := rows.Scan(&p.ID, &p.GrantedUserID, &p.OwnerUserID, &p.ResourceType, &p.PermissionType, &p.CreatedAt, &expiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}

		if expiresAt.Valid {
			p.ExpiresAt = expiresAt.Time
		}

		permissions = append(permissions, p)
	}

	return permissions, rows.Err()
}

// CheckPermission checks if a user may access a resource owned by another
// user: owners and admins always pass, collaborators need an unexpired
// grant. Write grants imply read.
func CheckPermission(userID, resourceOwnerID, resourceType, permissionType string) (bool, error) {
	if userID == resourceOwnerID {
		return true, nil
	}

	isUserAdmin, err := IsAdmin(userID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin status: %w", err)
	}
	if isUserAdmin {
		return true, nil
	}

	var exists bool
	err = database.DB.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM permissions
			WHERE granted_user_id = ?
			AND owner_user_id = ?
			AND resource_type IN (?, 'all')
			AND permission_type IN (?, 'write', 'all')
			AND (expires_at IS NULL OR expires_at > ?)
		)
	`, userID, resourceOwnerID, resourceType, permissionType, time.Now()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check permission: %w", err)
	}

	return exists, nil
}

// GetAccessibleOwners lists the owner ids whose resources a user can reach
// for the given resource and permission type (always including the user).
func GetAccessibleOwners(userID, resourceType, permissionType string) ([]string, error) {
	isUserAdmin, err := IsAdmin(userID)
	if err != nil {
		logging.Log.WithField("userId", userID).Warnf("Failed to check admin status: %v", err)
		isUserAdmin = false
	}

	var rows *sql.Rows
	if isUserAdmin {
		rows, err = database.DB.Query(`SELECT id FROM users`)
	} else {
		rows, err = database.DB.Query(`
			SELECT DISTINCT owner_user_id
			FROM permissions
			WHERE granted_user_id = ?
			AND resource_type IN (?, 'all')
			AND permission_type IN (?, 'write', 'all')
			AND (expires_at IS NULL OR expires_at > ?)
			UNION
			SELECT ? as owner_user_id
		`, userID, resourceType, permissionType, time.Now(), userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query accessible owners: %w", err)
	}
	defer rows.Close()

	var ownerIDs []string
	for rows.Next() {
		var ownerID string
		if err := rows.Scan(&ownerID); err != nil {
			return nil, fmt.Errorf("failed to scan owner ID: %w", err)
		}
		ownerIDs = append(ownerIDs, ownerID)
	}

	return ownerIDs, rows.Err()
}
