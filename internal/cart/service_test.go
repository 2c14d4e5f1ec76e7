package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
)

type fakeStore struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return value, nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeStore) CartKey(sessionID string) string {
	return "eqp:cart:" + sessionID
}

type fakeItems struct {
	items map[uuid.UUID]*models.EquipmentItem
}

func (f *fakeItems) GetByID(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *item
	return &clone, nil
}

func (f *fakeItems) add(item models.EquipmentItem) models.EquipmentItem {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.State == "" {
		item.State = enums.ItemStateNormal
	}
	if item.Category == "" {
		item.Category = enums.EquipmentCategoryMisc
	}
	f.items[item.ID] = &item
	return item
}

func newTestCart(t *testing.T) (Service, *fakeStore, *fakeItems) {
	t.Helper()

	store := newFakeStore()
	items := &fakeItems{items: map[uuid.UUID]*models.EquipmentItem{}}
	svc, err := NewService(store, items, time.Hour)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, items
}

func TestAddPutsSingleUnitLine(t *testing.T) {
	svc, store, items := newTestCart(t)
	ctx := context.Background()

	item := items.add(models.EquipmentItem{Name: "Canon R5", TotalQty: 5})

	dto, err := svc.Add(ctx, "sess", item.ID)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Qty != 1 {
		t.Fatalf("unexpected cart: %+v", dto)
	}
	if ttl := store.ttls["eqp:cart:sess"]; ttl != time.Hour {
		t.Fatalf("cart must carry the session ttl, got %v", ttl)
	}
}

func TestAddIsSilentNoOp(t *testing.T) {
	svc, _, items := newTestCart(t)
	ctx := context.Background()

	exhausted := items.add(models.EquipmentItem{Name: "Mic", TotalQty: 5, BorrowedQty: 5})
	blocked := items.add(models.EquipmentItem{Name: "Drill", TotalQty: 5, State: enums.ItemStateUnderRepair})
	normal := items.add(models.EquipmentItem{Name: "Tent", TotalQty: 2})

	dto, err := svc.Add(ctx, "sess", exhausted.ID)
	if err != nil {
		t.Fatalf("Add exhausted: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("exhausted item must not enter the cart: %+v", dto)
	}

	dto, err = svc.Add(ctx, "sess", blocked.ID)
	if err != nil {
		t.Fatalf("Add blocked: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("blocked item must not enter the cart: %+v", dto)
	}

	if _, err := svc.Add(ctx, "sess", normal.ID); err != nil {
		t.Fatalf("Add normal: %v", err)
	}
	dto, err = svc.Add(ctx, "sess", normal.ID)
	if err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Qty != 1 {
		t.Fatalf("duplicate add must leave the line untouched: %+v", dto)
	}
}

func TestAddUnknownItemIsNotFound(t *testing.T) {
	svc, _, _ := newTestCart(t)

	_, err := svc.Add(context.Background(), "sess", uuid.New())
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetQuantityClampsDownSilently(t *testing.T) {
	svc, _, items := newTestCart(t)
	ctx := context.Background()

	item := items.add(models.EquipmentItem{Name: "Cable", TotalQty: 5})
	if _, err := svc.Add(ctx, "sess", item.ID); err != nil {
		t.Fatalf("Add: %v", err)
	}

	dto, err := svc.SetQuantity(ctx, "sess", item.ID, 4)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if dto.Lines[0].Qty != 4 {
		t.Fatalf("expected qty 4, got %d", dto.Lines[0].Qty)
	}

	// Another borrower takes 3 units; the stored 4 must clamp to 2.
	items.items[item.ID].BorrowedQty = 3
	dto, err = svc.SetQuantity(ctx, "sess", item.ID, 4)
	if err != nil {
		t.Fatalf("SetQuantity after concurrent borrow: %v", err)
	}
	if dto.Lines[0].Qty != 2 {
		t.Fatalf("expected clamp to 2, got %d", dto.Lines[0].Qty)
	}

	// Requests below one clamp up to the single-unit floor.
	dto, err = svc.SetQuantity(ctx, "sess", item.ID, 0)
	if err != nil {
		t.Fatalf("SetQuantity zero: %v", err)
	}
	if dto.Lines[0].Qty != 1 {
		t.Fatalf("expected floor of 1, got %d", dto.Lines[0].Qty)
	}
}

func TestSetQuantityMissingLine(t *testing.T) {
	svc, _, items := newTestCart(t)
	item := items.add(models.EquipmentItem{Name: "Lens", TotalQty: 2})

	_, err := svc.SetQuantity(context.Background(), "sess", item.ID, 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc, store, items := newTestCart(t)
	ctx := context.Background()

	a := items.add(models.EquipmentItem{Name: "A", TotalQty: 2})
	b := items.add(models.EquipmentItem{Name: "B", TotalQty: 2})
	if _, err := svc.Add(ctx, "sess", a.ID); err != nil {
		t.Fatalf("Add a: %v", err)
	}
	if _, err := svc.Add(ctx, "sess", b.ID); err != nil {
		t.Fatalf("Add b: %v", err)
	}

	dto, err := svc.Remove(ctx, "sess", a.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(dto.Lines) != 1 || dto.Lines[0].Item.ID != b.ID {
		t.Fatalf("unexpected cart after remove: %+v", dto)
	}

	// Removing an absent line is not an error.
	if _, err := svc.Remove(ctx, "sess", uuid.New()); err != nil {
		t.Fatalf("Remove absent: %v", err)
	}

	if err := svc.Clear(ctx, "sess"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := store.data["eqp:cart:sess"]; ok {
		t.Fatal("clear must delete the cart key")
	}
}

func TestGetDropsDeletedItems(t *testing.T) {
	svc, _, items := newTestCart(t)
	ctx := context.Background()

	item := items.add(models.EquipmentItem{Name: "Gone", TotalQty: 2})
	if _, err := svc.Add(ctx, "sess", item.ID); err != nil {
		t.Fatalf("Add: %v", err)
	}

	delete(items.items, item.ID)

	dto, err := svc.Get(ctx, "sess")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(dto.Lines) != 0 {
		t.Fatalf("deleted item must drop off the render: %+v", dto)
	}
}
