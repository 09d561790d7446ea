package dto

import (
	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/session"
	"github.com/caratemple/forum/internal/utils"
)

// Page view models carry what a template would receive.

type PageDTO struct {
	CurrentUser *UserDTO          `json:"current_user"`
	Flashes     []session.Flash   `json:"flashes"`
	CSRF        map[string]string `json:"csrf"`
}

type HomeView struct {
	PageDTO
	Discussions []DiscussionListItemDTO  `json:"discussions"`
	Pagination  utils.PaginationResponse `json:"pagination"`
	Query       string                   `json:"query"`
}

type DiscussionView struct {
	PageDTO
	Discussion   DiscussionDTO     `json:"discussion"`
	RootPost     *PostDTO          `json:"root_post"`
	Replies      []PostDTO         `json:"replies"`
	Participants []string          `json:"participants"`
	IsOwner      bool              `json:"is_owner"`
	EditMode     bool              `json:"edit_mode"`
	Categories   []models.Category `json:"categories"`
}

type FormView struct {
	PageDTO
	Errors     map[string]string `json:"errors,omitempty"`
	Values     map[string]string `json:"values,omitempty"`
	Categories []models.Category `json:"categories,omitempty"`
}

type AdminView struct {
	PageDTO
	Stats       repository.Stats     `json:"stats"`
	Users       []AdminUserDTO       `json:"users"`
	Discussions []AdminDiscussionDTO `json:"discussions"`
	Posts       []AdminPostDTO       `json:"posts"`
}
