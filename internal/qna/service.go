package qna

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/minimart-backend/pkg/auth"
	"github.com/angelmondragon/minimart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
	"github.com/angelmondragon/minimart-backend/pkg/pagination"
)

type PostDTO struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Title      string     `json:"title"`
	Question   string     `json:"question"`
	Answer     *string    `json:"answer,omitempty"`
	AnsweredBy *uuid.UUID `json:"answered_by,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	IsPublic   bool       `json:"is_public"`
	CreatedAt  time.Time  `json:"created_at"`
}

type PostPageDTO struct {
	Posts      []PostDTO `json:"posts"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"total_pages"`
}

type CreateInput struct {
	Title    string
	Question string
	IsPublic bool
}

// Service manages support questions and admin answers.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*PostDTO, error)
	List(ctx context.Context, caller auth.Actor, page pagination.Page) (*PostPageDTO, error)
	Get(ctx context.Context, caller auth.Actor, postID uuid.UUID) (*PostDTO, error)
	Delete(ctx context.Context, caller auth.Actor, postID uuid.UUID) error
	Answer(ctx context.Context, admin auth.Actor, postID uuid.UUID, answer string) (*PostDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qna repo is required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*PostDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	title := strings.TrimSpace(input.Title)
	question := strings.TrimSpace(input.Question)
	if title == "" || question == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and question are required")
	}
	post := &models.QnaPost{
		UserID:   userID,
		Title:    title,
		Question: question,
		IsPublic: input.IsPublic,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert qna post")
	}
	dto := toDTO(*post)
	return &dto, nil
}

func (s *service) List(ctx context.Context, caller auth.Actor, page pagination.Page) (*PostPageDTO, error) {
	if caller.IsGuest() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	var viewer *uuid.UUID
	if !caller.IsAdmin() {
		viewer = caller.UserIDPtr()
	}
	page = page.Normalize()
	rows, total, err := s.repo.List(ctx, viewer, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list qna posts")
	}
	out := &PostPageDTO{
		Posts:      make([]PostDTO, 0, len(rows)),
		Page:       page.Page,
		Limit:      page.Limit,
		Total:      total,
		TotalPages: pagination.TotalPages(total, page.Limit),
	}
	for _, row := range rows {
		out.Posts = append(out.Posts, toDTO(row))
	}
	return out, nil
}

// Get returns a post. Private posts are visible to their owner and admins;
// anyone else gets NOT_FOUND so the post's existence is not disclosed.
func (s *service) Get(ctx context.Context, caller auth.Actor, postID uuid.UUID) (*PostDTO, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic && post.UserID != caller.UserID && !caller.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "qna post not found")
	}
	dto := toDTO(*post)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, caller auth.Actor, postID uuid.UUID) error {
	if caller.IsGuest() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != caller.UserID && !caller.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author may delete this post")
	}
	if _, err := s.repo.Delete(ctx, post.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete qna post")
	}
	return nil
}

func (s *service) Answer(ctx context.Context, admin auth.Actor, postID uuid.UUID, answer string) (*PostDTO, error) {
	if !admin.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "answer is required")
	}
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if _, err := s.repo.Answer(ctx, post.ID, admin.UserID, answer, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: answer qna post")
	}
	post.Answer = &answer
	post.AnsweredBy = admin.UserIDPtr()
	post.AnsweredAt = &now
	dto := toDTO(*post)
	return &dto, nil
}

func (s *service) load(ctx context.Context, postID uuid.UUID) (*models.QnaPost, error) {
	if postID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "post id is required")
	}
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "qna post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load qna post")
	}
	return post, nil
}

func toDTO(m models.QnaPost) PostDTO {
	return PostDTO{
		ID:         m.ID,
		UserID:     m.UserID,
		Title:      m.Title,
		Question:   m.Question,
		Answer:     m.Answer,
		AnsweredBy: m.AnsweredBy,
		AnsweredAt: m.AnsweredAt,
		IsPublic:   m.IsPublic,
		CreatedAt:  m.CreatedAt,
	}
}
