package core

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	PostEvents(gctx *gin.Context)
	GetEvents(gctx *gin.Context)
	GetEvent(gctx *gin.Context)
}

type handlers struct {
	repository Repository
	notifier   Notifier
	location   *time.Location
}

// NewHandlers reads zoneless timestamps in location, the zone reminders are
// formatted in.
func NewHandlers(repository Repository, notifier Notifier, location *time.Location) Handlers {
	if location == nil {
		location = time.Local
	}

	return &handlers{repository: repository, notifier: notifier, location: location}
}

func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var request EventRequest

	// Accepts a JSON payload with title, start, end, url and phoneNumber.
	err := gctx.ShouldBindJSON(&request)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to bind JSON")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, ErrorFrom(err))

		return
	}

	// start and end must be readable as timestamps, nothing else is checked
	event, err := ToEvent(request, h.location)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("event coercion failed")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, ErrorFrom(err))

		return
	}

	savedEvent, err := h.repository.SaveEvent(ctx, event)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("saving event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorFrom(err))

		return
	}

	// Sent right away regardless of how far the event is; the sweep may send again.
	h.notifier.Notify(ctx, *savedEvent)

	gctx.JSON(http.StatusCreated, savedEvent)
}

func (h *handlers) GetEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	events, err := h.repository.FindEvents(ctx, EventFilter{})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("listing events failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorFrom(err))

		return
	}

	if events == nil {
		events = []Event{}
	}

	gctx.JSON(http.StatusOK, events)
}

func (h *handlers) GetEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	// Checks that id param is there
	id := gctx.Param("id")
	if len(id) == 0 {
		log.Ctx(ctx).Error().Msg("parameter 'id' is required")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("parameter 'id' is required"))

		return
	}

	event, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			log.Ctx(ctx).Info().Str("event_id", id).Msg("event not found")
			gctx.AbortWithStatusJSON(http.StatusNotFound, ErrorFrom(err))

			return
		}

		log.Ctx(ctx).Error().Err(err).Msg("getting event failed")
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorFrom(err))

		return
	}

	gctx.JSON(http.StatusOK, event)
}
