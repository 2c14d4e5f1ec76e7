package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
)

type fakeRepository struct {
	items      map[uuid.UUID]*models.EquipmentItem
	overrideFn func(ctx context.Context, id uuid.UUID, borrowedQty int) error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{items: map[uuid.UUID]*models.EquipmentItem{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, item *models.EquipmentItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeRepository) List(ctx context.Context, query ListQuery) (*ListResult, error) {
	out := make([]models.EquipmentItem, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, *item)
	}
	return &ListResult{Items: out}, nil
}

func (f *fakeRepository) Update(ctx context.Context, item *models.EquipmentItem) error {
	clone := *item
	f.items[item.ID] = &clone
	return nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeRepository) AdjustBorrowed(ctx context.Context, id uuid.UUID, delta int) (*models.EquipmentItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	next := item.BorrowedQty + delta
	if next < 0 {
		next = 0
	}
	if next > item.TotalQty {
		next = item.TotalQty
	}
	item.BorrowedQty = next
	clone := *item
	return &clone, nil
}

func (f *fakeRepository) ReserveStock(ctx context.Context, id uuid.UUID, qty int) (bool, error) {
	item, ok := f.items[id]
	if !ok {
		return false, nil
	}
	if item.State != enums.ItemStateNormal || item.BorrowedQty+qty > item.TotalQty {
		return false, nil
	}
	item.BorrowedQty += qty
	return true, nil
}

func (f *fakeRepository) OverrideBorrowed(ctx context.Context, id uuid.UUID, borrowedQty int) error {
	if f.overrideFn != nil {
		return f.overrideFn(ctx, id, borrowedQty)
	}
	item, ok := f.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.BorrowedQty = borrowedQty
	return nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo
}

func TestCreateItemValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateItemInput
	}{
		{"missing name", CreateItemInput{Category: enums.EquipmentCategoryCamera, TotalQty: 1}},
		{"bad category", CreateItemInput{Name: "X", Category: "weird", TotalQty: 1}},
		{"zero quantity", CreateItemInput{Name: "X", Category: enums.EquipmentCategoryCamera, TotalQty: 0}},
		{"bad state", CreateItemInput{Name: "X", Category: enums.EquipmentCategoryCamera, TotalQty: 1, State: "broken"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, tc.input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateItemDefaultsStateAndStatus(t *testing.T) {
	svc, _ := newTestService(t)

	dto, err := svc.CreateItem(context.Background(), CreateItemInput{
		Name:     "Canon R5",
		Category: enums.EquipmentCategoryCamera,
		TotalQty: 3,
	})
	if err != nil {
		t.Fatalf("CreateItem error: %v", err)
	}
	if dto.State != enums.ItemStateNormal {
		t.Fatalf("expected default normal state, got %s", dto.State)
	}
	if dto.Status.Severity != enums.StatusSeverityOK {
		t.Fatalf("expected ok status, got %+v", dto.Status)
	}
	if dto.AvailableQty != 3 {
		t.Fatalf("expected 3 available, got %d", dto.AvailableQty)
	}
}

func TestUpdateItemRejectsTotalBelowBorrowed(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	item := &models.EquipmentItem{Name: "Mixer", Category: enums.EquipmentCategoryAudio, TotalQty: 5, BorrowedQty: 3, State: enums.ItemStateNormal}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("seed: %v", err)
	}

	two := 2
	_, err := svc.UpdateItem(ctx, item.ID, UpdateItemInput{TotalQty: &two})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOverrideRangeValidation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	item := &models.EquipmentItem{Name: "Tent", Category: enums.EquipmentCategoryOutdoor, TotalQty: 4, State: enums.ItemStateNormal}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Override(ctx, item.ID, 5); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error above total, got %v", err)
	}
	if _, err := svc.Override(ctx, item.ID, -1); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error below zero, got %v", err)
	}

	dto, err := svc.Override(ctx, item.ID, 4)
	if err != nil {
		t.Fatalf("Override error: %v", err)
	}
	if dto.BorrowedQty != 4 || dto.Status.Severity != enums.StatusSeverityCritical {
		t.Fatalf("unexpected override result: %+v", dto)
	}
}

func TestAdjustUnknownItemIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Adjust(context.Background(), uuid.New(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteItemUnknownIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteItem(context.Background(), uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
