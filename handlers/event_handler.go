package handlers

import (
	"net/http"

	"github.com/clubops/session-system/services"
)

type EventHandler struct {
	eventService services.EventService
	rsvpService  services.RsvpService
	teamService  services.TeamService
}

func NewEventHandler(
	es services.EventService,
	rs services.RsvpService,
	ts services.TeamService,
) *EventHandler {
	return &EventHandler{
		eventService: es,
		rsvpService:  rs,
		teamService:  ts,
	}
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEventByID(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) Rsvp(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		PlayerID int    `json:"player_id"`
		Status   string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	rsvp, err := h.rsvpService.Upsert(r.Context(), eventID, input.PlayerID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rsvp": rsvp}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	attendees, err := h.eventService.ListAttendees(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"attendees": attendees}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) GenerateTeams(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Strategy string `json:"strategy"`
		TeamSize int    `json:"team_size"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	generated, err := h.teamService.GenerateTeams(r.Context(), services.GenerateTeamsInput{
		EventID:  eventID,
		Strategy: input.Strategy,
		TeamSize: input.TeamSize,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": generated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	eventTeams, err := h.teamService.ListTeams(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": eventTeams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
