package handlers

import (
	"net/http"
	"time"

	"github.com/clubops/session-system/models"
	"github.com/clubops/session-system/services"
)

// AdminHandler группирует операции клубного администратора: ручные запуски
// планировщика, правка рейтингов и разбор результатов матчей.
type AdminHandler struct {
	scheduleService services.ScheduleService
	dispatchService services.DispatchService
	teamService     services.TeamService
	ratingService   services.RatingService
	playerService   services.PlayerService
}

func NewAdminHandler(
	schedule services.ScheduleService,
	dispatch services.DispatchService,
	team services.TeamService,
	ratingSvc services.RatingService,
	player services.PlayerService,
) *AdminHandler {
	return &AdminHandler{
		scheduleService: schedule,
		dispatchService: dispatch,
		teamService:     team,
		ratingService:   ratingSvc,
		playerService:   player,
	}
}

func (h *AdminHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates := h.scheduleService.Templates()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"templates": templates}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateEventNow создаёт внеплановое событие по шаблону со стартом через час.
func (h *AdminHandler) CreateEventNow(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TemplateID string `json:"template_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.scheduleService.CreateEventNow(r.Context(), input.TemplateID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.ListPlayers(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) SetPlayerSkill(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Skill int `json:"skill"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.SetSkill(r.Context(), playerID, input.Skill); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "skill updated"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdjustTeamSkill сдвигает рейтинг каждого игрока команды на delta.
func (h *AdminHandler) AdjustTeamSkill(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teamIndex, err := getIDFromURL(r, "teamIndex")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Delta int `json:"delta"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.AdjustTeamSkill(r.Context(), eventID, teamIndex, input.Delta); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "team skill adjusted"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ApplyMatchResults принимает пакет исходов матчей события и пересчитывает
// рейтинги участников одной транзакцией.
func (h *AdminHandler) ApplyMatchResults(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Matches []models.MatchResult `json:"matches"`
		KFactor float64              `json:"k_factor"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	updated, err := h.ratingService.ApplyMatchResults(r.Context(), eventID, input.Matches, input.KFactor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players_updated": updated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RunDispatchCycle — ручной прогон цикла уведомлений, вне расписания тикера.
func (h *AdminHandler) RunDispatchCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.dispatchService.RunCycle(r.Context(), time.Now()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "dispatch cycle completed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RunScheduleCycle — ручной прогон планировщика повторяющихся событий.
func (h *AdminHandler) RunScheduleCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduleService.RunScheduleCycle(r.Context(), time.Now()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "schedule cycle completed"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
