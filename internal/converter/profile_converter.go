package converter

import (
	"clinic-queue-manager/internal/delivery/dto"
	"clinic-queue-manager/internal/domain/entity"
)

// ProfileToResponse converts a Profile entity plus its role set to a
// ProfileResponse DTO
func ProfileToResponse(profile *entity.Profile, roles entity.RoleSet) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}

	return &dto.ProfileResponse{
		ID:        profile.ID,
		Email:     profile.Email,
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		Roles:     roles.Names(),
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}
