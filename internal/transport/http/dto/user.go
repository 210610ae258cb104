package dto

import (
	"photogram/internal/domain/models"

	"github.com/google/uuid"
)

type UserView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}

	return &UserView{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
	}
}
