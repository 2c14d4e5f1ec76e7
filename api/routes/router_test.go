package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	authsvc "github.com/orangegegege/equipment-manager/internal/auth"
	borrowsvc "github.com/orangegegege/equipment-manager/internal/borrow"
	cartsvc "github.com/orangegegege/equipment-manager/internal/cart"
	"github.com/orangegegege/equipment-manager/internal/inventory"
	"github.com/orangegegege/equipment-manager/internal/manifest"
	mediasvc "github.com/orangegegege/equipment-manager/internal/media"
	pkgauth "github.com/orangegegege/equipment-manager/pkg/auth"
	"github.com/orangegegege/equipment-manager/pkg/config"
	"github.com/orangegegege/equipment-manager/pkg/db/models"
	"github.com/orangegegege/equipment-manager/pkg/enums"
	"github.com/orangegegege/equipment-manager/pkg/logger"
	"github.com/orangegegege/equipment-manager/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

// stubSessions maps issued session ids to their roles, mirroring what the
// Redis-backed manager does for live sessions.
type stubSessions struct {
	roles map[string]enums.Role
}

func (s stubSessions) Role(_ context.Context, sessionID string) (enums.Role, error) {
	role, ok := s.roles[sessionID]
	if !ok {
		return "", nil
	}
	return role, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{AccessToken: "token", Role: enums.RoleMember}, nil
}

func (stubAuthService) Logout(context.Context, string) error {
	return nil
}

type stubInventoryService struct{}

func (stubInventoryService) ListItems(context.Context, inventory.ListItemsInput) (*inventory.ListItemsResult, error) {
	return &inventory.ListItemsResult{}, nil
}

func (stubInventoryService) GetItem(_ context.Context, id uuid.UUID) (*inventory.ItemDTO, error) {
	return &inventory.ItemDTO{ID: id}, nil
}

func (stubInventoryService) CreateItem(context.Context, inventory.CreateItemInput) (*inventory.ItemDTO, error) {
	panic("unimplemented")
}

func (stubInventoryService) UpdateItem(context.Context, uuid.UUID, inventory.UpdateItemInput) (*inventory.ItemDTO, error) {
	panic("unimplemented")
}

func (stubInventoryService) DeleteItem(context.Context, uuid.UUID) error {
	return nil
}

func (stubInventoryService) Adjust(context.Context, uuid.UUID, int) (*models.EquipmentItem, error) {
	panic("unimplemented")
}

func (stubInventoryService) Override(context.Context, uuid.UUID, int) (*inventory.ItemDTO, error) {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Get(context.Context, string) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{}, nil
}

func (stubCartService) Lines(context.Context, string) ([]cartsvc.Line, error) {
	return nil, nil
}

func (stubCartService) Add(context.Context, string, uuid.UUID) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) SetQuantity(context.Context, string, uuid.UUID, int) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Remove(context.Context, string, uuid.UUID) (*cartsvc.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(context.Context, string) error {
	return nil
}

type stubBorrowService struct{}

func (stubBorrowService) Commit(context.Context, string, borrowsvc.CommitInput) (*borrowsvc.CommitResult, error) {
	panic("unimplemented")
}

func (stubBorrowService) Return(context.Context, uuid.UUID) (*borrowsvc.RecordDTO, error) {
	panic("unimplemented")
}

func (stubBorrowService) ReturnAllForBorrower(context.Context, string) (*borrowsvc.BulkReturnResult, error) {
	panic("unimplemented")
}

func (stubBorrowService) ListRecords(context.Context, borrowsvc.ListRecordsInput) (*borrowsvc.ListRecordsResult, error) {
	return &borrowsvc.ListRecordsResult{}, nil
}

type stubMediaService struct{}

func (stubMediaService) UploadItemImage(context.Context, uuid.UUID, mediasvc.UploadInput) (*mediasvc.UploadResult, error) {
	panic("unimplemented")
}

func (stubMediaService) RemoveItemImage(context.Context, string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role, sessionID string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		Role:      role,
		SessionID: sessionID,
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T, cfg *config.Config, sessions stubSessions, registry *prometheus.Registry) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	manifests, err := manifest.NewService(config.ManifestConfig{RowsPerPage: 22, NameMaxWidth: 28})
	if err != nil {
		t.Fatalf("manifest service: %v", err)
	}
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		nil,
		sessions,
		registry,
		Services{
			Auth:      stubAuthService{},
			Inventory: stubInventoryService{},
			Cart:      stubCartService{},
			Borrow:    stubBorrowService{},
			Manifest:  manifests,
			Media:     stubMediaService{},
		},
	)
}

func TestProtectedGroupRejectsMissingToken(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubSessions{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithToken(t *testing.T) {
	cfg := testConfig()
	sessionID := uuid.NewString()
	router := newTestRouter(t, cfg, stubSessions{roles: map[string]enums.Role{sessionID: enums.RoleMember}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleMember, sessionID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for member items got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	memberSession := uuid.NewString()
	adminSession := uuid.NewString()
	router := newTestRouter(t, cfg, stubSessions{roles: map[string]enums.Role{
		memberSession: enums.RoleMember,
		adminSession:  enums.RoleAdmin,
	}}, nil)

	target := "/api/admin/v1/items/" + uuid.NewString()

	member := httptest.NewRequest(http.MethodDelete, target, nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleMember, memberSession))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodDelete, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleAdmin, adminSession))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestRevokedSessionLosesAccess(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, stubSessions{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleMember, uuid.NewString()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubSessions{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMetricsExposedWithRegistry(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubSessions{}, prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestLoginRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig(), stubSessions{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed login got %d", resp.Code)
	}
}
