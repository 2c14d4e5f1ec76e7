package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orangegegege/equipment-manager/internal/inventory"
	"github.com/orangegegege/equipment-manager/pkg/db/models"
	pkgerrors "github.com/orangegegege/equipment-manager/pkg/errors"
)

type cartStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

type itemReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error)
}

// Service is the per-session reservation cart. Lines live in Redis under the
// session's cart key and expire with the session.
type Service interface {
	Get(ctx context.Context, sessionID string) (*CartDTO, error)
	Lines(ctx context.Context, sessionID string) ([]Line, error)
	Add(ctx context.Context, sessionID string, equipmentID uuid.UUID) (*CartDTO, error)
	SetQuantity(ctx context.Context, sessionID string, equipmentID uuid.UUID, qty int) (*CartDTO, error)
	Remove(ctx context.Context, sessionID string, equipmentID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, sessionID string) error
}

type service struct {
	store cartStore
	items itemReader
	ttl   time.Duration
}

// NewService wires a cart service against the session store and item reader.
func NewService(store cartStore, items itemReader, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if items == nil {
		return nil, fmt.Errorf("item reader required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &service{store: store, items: items, ttl: ttl}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*CartDTO, error) {
	lines, err := s.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, lines)
}

func (s *service) Lines(ctx context.Context, sessionID string) ([]Line, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	raw, err := s.store.Get(ctx, s.store.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return []Line{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cart")
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart")
	}
	return lines, nil
}

// Add appends a single-unit line. Already-present, exhausted, and manually
// blocked items are all silent no-ops rather than errors.
func (s *service) Add(ctx context.Context, sessionID string, equipmentID uuid.UUID) (*CartDTO, error) {
	if equipmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "equipment id is required")
	}

	lines, err := s.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		if line.EquipmentID == equipmentID {
			return s.render(ctx, lines)
		}
	}

	item, err := s.loadItem(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if !item.Borrowable() {
		return s.render(ctx, lines)
	}

	lines = append(lines, Line{EquipmentID: equipmentID, Qty: 1, AddedAt: time.Now().UTC()})
	if err := s.save(ctx, sessionID, lines); err != nil {
		return nil, err
	}
	return s.render(ctx, lines)
}

// SetQuantity clamps the requested quantity into [1, available]. When
// availability dropped since the line was added the stored quantity clamps
// down silently, never up.
func (s *service) SetQuantity(ctx context.Context, sessionID string, equipmentID uuid.UUID, qty int) (*CartDTO, error) {
	lines, err := s.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, line := range lines {
		if line.EquipmentID == equipmentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}

	item, err := s.loadItem(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	clamped := qty
	if available := item.AvailableQty(); clamped > available {
		clamped = available
	}
	if clamped < 1 {
		clamped = 1
	}
	lines[idx].Qty = clamped

	if err := s.save(ctx, sessionID, lines); err != nil {
		return nil, err
	}
	return s.render(ctx, lines)
}

func (s *service) Remove(ctx context.Context, sessionID string, equipmentID uuid.UUID) (*CartDTO, error) {
	lines, err := s.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := lines[:0]
	for _, line := range lines {
		if line.EquipmentID != equipmentID {
			kept = append(kept, line)
		}
	}

	if err := s.save(ctx, sessionID, kept); err != nil {
		return nil, err
	}
	return s.render(ctx, kept)
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, sessionID string, lines []Line) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.store.Set(ctx, s.store.CartKey(sessionID), string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing cart")
	}
	return nil
}

func (s *service) loadItem(ctx context.Context, id uuid.UUID) (*models.EquipmentItem, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "equipment item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading equipment item")
	}
	return item, nil
}

func (s *service) render(ctx context.Context, lines []Line) (*CartDTO, error) {
	dto := &CartDTO{Lines: make([]LineDTO, 0, len(lines))}
	for _, line := range lines {
		item, err := s.loadItem(ctx, line.EquipmentID)
		if err != nil {
			// An item deleted out from under the cart drops off the render.
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		dto.Lines = append(dto.Lines, LineDTO{Item: inventory.ToItemDTO(*item), Qty: line.Qty, AddedAt: line.AddedAt})
	}
	return dto, nil
}
