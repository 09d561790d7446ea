package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/caratemple/forum/internal/constants"
	"github.com/caratemple/forum/internal/models"
	"github.com/caratemple/forum/internal/repository"
	"github.com/caratemple/forum/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotPermitted       = errors.New("user is not allowed to modify this discussion")
	ErrDiscussionNotFound = errors.New("discussion not found")
	ErrPostNotFound       = errors.New("post not found")
)

// SearchHint is returned with empty results when the search term is too short.
const SearchHint = "Tape au moins 2 caractères"

// ViewTracker decides whether a discussion view should be counted.
type ViewTracker interface {
	ShouldCountView(discussionID uint64) bool
}

// DiscussionService handles discussion, reply and like business logic
type DiscussionService struct {
	discussionRepo repository.DiscussionRepository
	postRepo       repository.PostRepository
}

// NewDiscussionService creates a new DiscussionService
func NewDiscussionService(discussionRepo repository.DiscussionRepository, postRepo repository.PostRepository) *DiscussionService {
	return &DiscussionService{
		discussionRepo: discussionRepo,
		postRepo:       postRepo,
	}
}

// DiscussionInput represents the discussion form
type DiscussionInput struct {
	Title    string
	Category string
	TagLine  string
	Body     string
}

// LatestFilter represents the home page listing options
type LatestFilter struct {
	Query string
	Page  utils.PaginationParams
}

// SearchResult is the outcome of an instant search
type SearchResult struct {
	Results []repository.DiscussionSummary
	Hint    string
}

func validateDiscussion(input DiscussionInput) (repository.DiscussionFields, error) {
	title := strings.TrimSpace(input.Title)
	tagLine := strings.TrimSpace(input.TagLine)
	body := strings.TrimSpace(input.Body)

	verr := NewValidationError()

	switch {
	case title == "":
		verr.Add(FieldTitle, "Le titre est requis.")
	case utf8.RuneCountInString(title) < constants.MinTitleLength:
		verr.Add(FieldTitle, "Le titre doit comporter au moins 6 caractères.")
	}

	if utf8.RuneCountInString(tagLine) > constants.MaxTagLineLength {
		verr.Add(FieldTagLine, "Le résumé doit contenir 120 caractères maximum.")
	}

	switch {
	case body == "":
		verr.Add(FieldBody, "Le contenu est requis.")
	case utf8.RuneCountInString(body) < constants.MinBodyLength:
		verr.Add(FieldBody, "Développe ta question en au moins 20 caractères.")
	}

	if err := verr.errOrNil(); err != nil {
		return repository.DiscussionFields{}, err
	}

	fields := repository.DiscussionFields{
		Title:    title,
		Category: models.ParseCategory(strings.TrimSpace(input.Category)),
		Body:     body,
	}
	if tagLine != "" {
		fields.TagLine = &tagLine
	}
	return fields, nil
}

// CreateDiscussion validates the form and stores the discussion with its root post
func (s *DiscussionService) CreateDiscussion(userID uint64, input DiscussionInput) (*models.Discussion, error) {
	fields, err := validateDiscussion(input)
	if err != nil {
		return nil, err
	}

	discussion := &models.Discussion{
		UserID:   userID,
		Title:    fields.Title,
		Category: fields.Category,
		TagLine:  fields.TagLine,
		Body:     fields.Body,
	}

	if err := s.discussionRepo.CreateWithRootPost(discussion); err != nil {
		return nil, fmt.Errorf("failed to create discussion: %w", err)
	}

	return discussion, nil
}

// UpdateDiscussion re-validates the form and updates an owned discussion
func (s *DiscussionService) UpdateDiscussion(discussionID, userID uint64, input DiscussionInput) error {
	fields, err := validateDiscussion(input)
	if err != nil {
		return err
	}

	err = s.discussionRepo.UpdateWithRootPost(discussionID, userID, fields)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, repository.ErrNotOwner):
		return ErrNotPermitted
	default:
		return fmt.Errorf("failed to update discussion: %w", err)
	}
}

// DeleteDiscussion deletes an owned discussion. It reports false when
// nothing was deleted.
func (s *DiscussionService) DeleteDiscussion(discussionID, userID uint64) (bool, error) {
	deleted, err := s.discussionRepo.DeleteOwned(discussionID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete discussion: %w", err)
	}
	return deleted, nil
}

// CreatePost adds a reply to a discussion
func (s *DiscussionService) CreatePost(discussionID, userID uint64, body string) (*models.Post, error) {
	body = strings.TrimSpace(body)

	verr := NewValidationError()
	switch {
	case body == "":
		verr.Add(FieldMessage, "Le message est requis.")
	case utf8.RuneCountInString(body) < constants.MinReplyLength:
		verr.Add(FieldMessage, "Le message doit contenir au moins 3 caractères.")
	}
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	post := &models.Post{
		DiscussionID: discussionID,
		UserID:       userID,
		Body:         body,
	}
	if err := s.postRepo.CreateReply(post); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// DeletePost soft deletes a reply of discussionID owned by the user. It
// reports false when the post is missing, in another discussion, foreign, a
// root post or already deleted.
func (s *DiscussionService) DeletePost(discussionID, postID, userID uint64) (bool, error) {
	if err := s.requirePostIn(discussionID, postID); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.postRepo.SoftDeleteOwned(postID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	return deleted, nil
}

// ToggleLike likes or unlikes a visible post of discussionID
func (s *DiscussionService) ToggleLike(discussionID, postID, userID uint64) (repository.LikeState, error) {
	if err := s.requirePostIn(discussionID, postID); err != nil {
		return repository.LikeState{}, err
	}

	state, err := s.postRepo.ToggleLike(postID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.LikeState{}, ErrPostNotFound
		}
		return repository.LikeState{}, fmt.Errorf("failed to toggle like: %w", err)
	}
	return state, nil
}

// requirePostIn returns ErrPostNotFound unless postID belongs to discussionID.
func (s *DiscussionService) requirePostIn(discussionID, postID uint64) error {
	post, err := s.postRepo.FindByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to find post: %w", err)
	}
	if post.DiscussionID != discussionID {
		return ErrPostNotFound
	}
	return nil
}

// RegisterView increments the view counter when the tracker allows it
func (s *DiscussionService) RegisterView(tracker ViewTracker, discussionID uint64) (bool, error) {
	if !tracker.ShouldCountView(discussionID) {
		return false, nil
	}
	if err := s.discussionRepo.IncrementViews(discussionID); err != nil {
		return false, fmt.Errorf("failed to register view: %w", err)
	}
	return true, nil
}

// FetchDiscussion loads a discussion with its author
func (s *DiscussionService) FetchDiscussion(discussionID uint64) (*repository.DiscussionDetail, error) {
	detail, err := s.discussionRepo.FindDetail(discussionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDiscussionNotFound
		}
		return nil, fmt.Errorf("failed to fetch discussion: %w", err)
	}
	return detail, nil
}

// FetchDiscussionPosts lists the visible posts of a discussion for viewerID
func (s *DiscussionService) FetchDiscussionPosts(discussionID, viewerID uint64) ([]repository.PostView, error) {
	posts, err := s.postRepo.ListVisible(discussionID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}
	return posts, nil
}

// FetchLatestDiscussions lists one page of discussions, most recently active first
func (s *DiscussionService) FetchLatestDiscussions(filter LatestFilter) ([]repository.DiscussionSummary, utils.PaginationResponse, error) {
	page := filter.Page
	discussions, err := s.discussionRepo.List(repository.DiscussionFilter{
		Query: filter.Query,
		Page:  &page,
	})
	if err != nil {
		return nil, utils.PaginationResponse{}, fmt.Errorf("failed to list discussions: %w", err)
	}

	pagination := page.Response(len(discussions))
	if len(discussions) > page.Limit {
		discussions = discussions[:page.Limit]
	}
	return discussions, pagination, nil
}

// SearchDiscussions matches term against titles and bodies, newest first
func (s *DiscussionService) SearchDiscussions(term string) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return SearchResult{Results: []repository.DiscussionSummary{}}, nil
	}
	if utf8.RuneCountInString(term) < constants.MinSearchLength {
		return SearchResult{Results: []repository.DiscussionSummary{}, Hint: SearchHint}, nil
	}

	results, err := s.discussionRepo.List(repository.DiscussionFilter{
		Query:          term,
		OrderByCreated: true,
		Limit:          constants.SearchLimit,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("failed to search discussions: %w", err)
	}
	if results == nil {
		results = []repository.DiscussionSummary{}
	}
	return SearchResult{Results: results}, nil
}
