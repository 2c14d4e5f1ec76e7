package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
	"github.com/orangegegege/equipment-manager/pkg/pagination"
)

// Service exposes equipment ledger operations.
type Service interface {
	ListItems(ctx context.Context, input ListItemsInput) (*ListItemsResult, error)
	GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Adjust(ctx context.Context, id uuid.UUID, delta int) (*models.EquipmentItem, error)
	Override(ctx context.Context, id uuid.UUID, borrowedQty int) (*ItemDTO, error)
}

// ListItemsInput carries list filters from the API layer.
type ListItemsInput struct {
	Query      string
	Category   *enums.EquipmentCategory
	State      *enums.ItemState
	Pagination pagination.Params
}

// ListItemsResult is one page of item DTOs.
type ListItemsResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

// CreateItemInput describes a new equipment item.
type CreateItemInput struct {
	Name     string                  `json:"name"`
	Category enums.EquipmentCategory `json:"category"`
	Location string                  `json:"location"`
	Tags     []string                `json:"tags"`
	TotalQty int                     `json:"total_qty"`
	State    enums.ItemState         `json:"state"`
	ImageURL *string                 `json:"image_url"`
}

// UpdateItemInput carries a partial update; nil fields are left untouched.
type UpdateItemInput struct {
	Name     *string                  `json:"name"`
	Category *enums.EquipmentCategory `json:"category"`
	Location *string                  `json:"location"`
	Tags     []string                 `json:"tags"`
	TotalQty *int                     `json:"total_qty"`
	State    *enums.ItemState         `json:"state"`
	ImageURL *string                  `json:"image_url"`
}

type service struct {
	repo Repository
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListItems(ctx context.Context, input ListItemsInput) (*ListItemsResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
	}
	if input.State != nil && !input.State.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid state %q", *input.State))
	}

	page, err := s.repo.List(ctx, ListQuery{
		Query:      input.Query,
		Category:   input.Category,
		State:      input.State,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing equipment items")
	}

	items := make([]ItemDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, ToItemDTO(item))
	}
	return &ListItemsResult{Items: items, NextCursor: page.NextCursor}, nil
}

func (s *service) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToItemDTO(*item)
	return &dto, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*ItemDTO, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.TotalQty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total quantity must be at least 1")
	}
	state := input.State
	if state == "" {
		state = enums.ItemStateNormal
	}
	if !state.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid state %q", state))
	}

	item := &models.EquipmentItem{
		Name:     input.Name,
		Category: input.Category,
		Location: input.Location,
		Tags:     normalizeTags(input.Tags),
		TotalQty: input.TotalQty,
		State:    state,
		ImageURL: input.ImageURL,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating equipment item")
	}

	dto := ToItemDTO(*item)
	return &dto, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name cannot be empty")
		}
		item.Name = *input.Name
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
		}
		item.Category = *input.Category
	}
	if input.Location != nil {
		item.Location = *input.Location
	}
	if input.Tags != nil {
		item.Tags = normalizeTags(input.Tags)
	}
	if input.TotalQty != nil {
		if *input.TotalQty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total quantity must be at least 1")
		}
		if *input.TotalQty < item.BorrowedQty {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("total quantity %d is below the %d currently borrowed", *input.TotalQty, item.BorrowedQty))
		}
		item.TotalQty = *input.TotalQty
	}
	if input.State != nil {
		if !input.State.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid state %q", *input.State))
		}
		item.State = *input.State
	}
	if input.ImageURL != nil {
		item.ImageURL = input.ImageURL
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating equipment item")
	}

	dto := ToItemDTO(*item)
	return &dto, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting equipment item")
	}
	return nil
}

// Adjust is the single sanctioned mutation path for borrowed_qty outside of
// the admin override.
func (s *service) Adjust(ctx context.Context, id uuid.UUID, delta int) (*models.EquipmentItem, error) {
	item, err := s.repo.AdjustBorrowed(ctx, id, delta)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting borrowed quantity")
	}
	return item, nil
}

func (s *service) Override(ctx context.Context, id uuid.UUID, borrowedQty int) (*ItemDTO, error) {
	item, err := s.loadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if borrowedQty < 0 || borrowedQty > item.TotalQty {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("borrowed quantity must be within [0, %d]", item.TotalQty))
	}

	if err := s.repo.OverrideBorrowed(ctx, id, borrowedQty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "overriding borrowed quantity")
	}

	item.BorrowedQty = borrowedQty
	dto := ToItemDTO(*item)
	return &dto, nil
}

func (s *service) loadItem(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading equipment item")
	}
	return item, nil
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
