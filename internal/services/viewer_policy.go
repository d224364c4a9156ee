package services

import "github.com/terraincognita07/foalwatch/internal/models"

func IsOwnerUser(user *models.User) bool {
	return user != nil && user.Role == models.RoleOwner
}

func IsViewerUser(user *models.User) bool {
	return user != nil && user.Role == models.RoleViewer
}

// ResolveHerdOwnerID returns whose records a user reads. Owners read their
// own herd; viewers read the herd of the owner who created them. Zero means
// the account is bound to no herd and sees nothing.
func ResolveHerdOwnerID(user *models.User) uint {
	switch {
	case IsOwnerUser(user):
		return user.ID
	case IsViewerUser(user) && user.HerdOwnerID != nil:
		return *user.HerdOwnerID
	default:
		return 0
	}
}
