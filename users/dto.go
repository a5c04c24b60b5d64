// Package users covers profile operations for the authenticated user.
package users

// ChangePasswordRequest carries a password change for the current user.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" example:"currentpassword"`
	NewPassword string `json:"newPassword" example:"newstrongpassword"`
}
