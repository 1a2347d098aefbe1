package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"table-order-api/models"
	"table-order-api/ordering"
	"table-order-api/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:generate mockgen -destination=mock_order_creator_test.go -package=handlers table-order-api/handlers OrderCreator

type OrderCreator interface {
	CreateOrder(ctx context.Context, in ordering.CreateOrderInput) (*ordering.Result, error)
}

type OrderStore interface {
	List(ctx context.Context, f repository.OrderFilter) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, order *models.Order, to models.OrderStatus, changedBy, note string, now time.Time) error
	History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

type ProductStore interface {
	List(ctx context.Context, f repository.ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	SetAvailability(ctx context.Context, id string, available bool) error
}

type TableStore interface {
	List(ctx context.Context) ([]models.Table, error)
	FindByID(ctx context.Context, id string) (*models.Table, error)
	FindActiveByToken(ctx context.Context, token string) (*models.Table, error)
	Create(ctx context.Context, table *models.Table) error
}

type SessionIssuer interface {
	Create(ctx context.Context, table *models.Table, ttl time.Duration, now time.Time, meta repository.SessionMeta) (*models.Session, error)
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, now time.Time) error
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Orders      OrderCreator
	OrderStore  OrderStore
	Products    ProductStore
	Tables      TableStore
	Sessions    SessionIssuer
	Users       UserStore
	DB          Pinger
	JWTSecret   []byte
	SessionTTL  time.Duration
	FrontendURL string
	Clock       func() time.Time
	Logger      *zap.Logger
}

// Handler serves the HTTP API.
type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Handler{Deps: d}
}

// statusFor maps an ordering error code onto an HTTP status.
func statusFor(code ordering.Code) int {
	switch code {
	case ordering.CodeInvalidSession:
		return http.StatusUnauthorized
	case ordering.CodeInvalidRequest, ordering.CodeInvalidProduct,
		ordering.CodeInvalidTopping, ordering.CodeInvalidComponent:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// internalError logs err and answers 500 with a generic message.
func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.Logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
