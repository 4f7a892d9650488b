package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// RoomStore is the room catalogue.
type RoomStore interface {
	Create(ctx context.Context, rm *model.Room) error
	Update(ctx context.Context, rm *model.Room, expect model.RoomStatus) error
	GetByNumber(ctx context.Context, number string) (*model.Room, error)
	List(ctx context.Context, f repository.RoomFilter) ([]model.Room, error)
}

// RoomHandler manages the room catalogue.  Occupancy is owned by the
// booking orchestrator, so staff may only toggle AVAILABLE and MAINTENANCE.
type RoomHandler struct {
	Rooms RoomStore
	Log   *zap.Logger
}

// NewRoomHandler panics if rooms is nil.
func NewRoomHandler(rooms RoomStore, log *zap.Logger) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomHandler{Rooms: rooms, Log: log}
}

type roomBody struct {
	RoomNumber    string  `json:"room_number" validate:"required,max=20"`
	Type          string  `json:"type" validate:"required,oneof=SINGLE DOUBLE SUITE DELUXE"`
	Status        string  `json:"status" validate:"omitempty,oneof=AVAILABLE OCCUPIED MAINTENANCE"`
	PricePerNight float64 `json:"price_per_night" validate:"gt=0"`
	Description   string  `json:"description" validate:"max=1000"`
	MaxOccupancy  int     `json:"max_occupancy" validate:"gt=0"`
}

func (b *roomBody) normalize() {
	b.RoomNumber = strings.TrimSpace(b.RoomNumber)
	b.Type = strings.ToUpper(strings.TrimSpace(b.Type))
	b.Status = strings.ToUpper(strings.TrimSpace(b.Status))
	b.Description = strings.TrimSpace(b.Description)
}

func (b roomBody) room() *model.Room {
	return &model.Room{
		Number:        b.RoomNumber,
		Type:          model.RoomType(b.Type),
		Status:        model.RoomStatus(b.Status),
		PricePerNight: b.PricePerNight,
		Description:   b.Description,
		MaxOccupancy:  b.MaxOccupancy,
	}
}

// staffStatus reports whether staff may set a room to s by hand.
func staffStatus(s model.RoomStatus) bool {
	return s == model.RoomAvailable || s == model.RoomMaintenance
}

// List handles GET /v1/rooms[?status=&type=].
func (h *RoomHandler) List(c echo.Context) error {
	f := repository.RoomFilter{
		Status: model.RoomStatus(strings.ToUpper(c.QueryParam("status"))),
		Type:   model.RoomType(strings.ToUpper(c.QueryParam("type"))),
	}
	if f.Status != "" && !f.Status.Valid() {
		return badRequest(c, "unknown status")
	}
	if f.Type != "" && !f.Type.Valid() {
		return badRequest(c, "unknown type")
	}
	rooms, err := h.Rooms.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms, "count": len(rooms)})
}

// Get handles GET /v1/rooms/:number.
func (h *RoomHandler) Get(c echo.Context) error {
	rm, err := h.Rooms.GetByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rm)
}

// Create handles POST /v1/rooms.  New rooms start AVAILABLE unless created
// in MAINTENANCE.
func (h *RoomHandler) Create(c echo.Context) error {
	var body roomBody
	if msg := bind(c, &body); msg != "" {
		return badRequest(c, msg)
	}
	rm := body.room()
	if rm.Status == "" {
		rm.Status = model.RoomAvailable
	}
	if !staffStatus(rm.Status) {
		return badRequest(c, "a new room must be AVAILABLE or MAINTENANCE")
	}
	if err := h.Rooms.Create(c.Request().Context(), rm); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, rm)
}

// Update handles PUT /v1/rooms/:number.  The number in the path wins over
// the body.  An empty status keeps the current one; otherwise only
// AVAILABLE and MAINTENANCE may be swapped.
func (h *RoomHandler) Update(c echo.Context) error {
	number := c.Param("number")
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.RoomNumber = number
	body.normalize()
	if err := c.Validate(&body); err != nil {
		return badRequest(c, validationMessage(err))
	}
	rm := body.room()
	ctx := c.Request().Context()
	cur, err := h.Rooms.GetByNumber(ctx, number)
	if err != nil {
		return fail(c, h.Log, err)
	}
	if rm.Status == "" {
		rm.Status = cur.Status
	}
	if rm.Status != cur.Status && (!staffStatus(cur.Status) || !staffStatus(rm.Status)) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":   "illegal_transition",
			"message": "room status " + string(cur.Status) + " cannot be changed to " + string(rm.Status) + " by hand",
		})
	}
	if err := h.Rooms.Update(ctx, rm, cur.Status); err != nil {
		return fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, rm)
}
