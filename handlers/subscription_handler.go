package handlers

import (
	"net/http"

	"github.com/clubops/session-system/services"
)

type SubscriptionHandler struct {
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(ss services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: ss}
}

func (h *SubscriptionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterSubscriptionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sub, err := h.subscriptionService.Register(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"subscription": sub}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SubscriptionHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Endpoint string `json:"endpoint"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.subscriptionService.Unregister(r.Context(), input.Endpoint); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "subscription removed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptionService.ListSubscriptions(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"subscriptions": subs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
