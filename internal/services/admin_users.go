package services

import (
	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

type AdminUserService struct {
	Users    UserStore
	Sessions *SessionRegistry
}

func (s *AdminUserService) List() ([]domain.User, error) {
	return s.Users.List()
}

// SetStatus blocks or unblocks a user. Blocking ends the user's live sessions.
func (s *AdminUserService) SetStatus(userID string, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	u, err := s.Users.Patch(userID, domain.UserPatch{Status: &status})
	if err != nil {
		return nil, err
	}
	if status == domain.UserBlocked && s.Sessions != nil {
		s.Sessions.EndUser(userID)
	}
	applog.Audit(nil, "admin.users.status", map[string]any{"user_id": userID, "status": string(status)})
	return u, nil
}
