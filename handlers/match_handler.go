package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/foosleague/ladder-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TournamentID *int       `json:"tournament_id"`
		Player1ID    int        `json:"player1_id"`
		Player2ID    int        `json:"player2_id"`
		Player1Goals int        `json:"player1_goals"`
		Player2Goals int        `json:"player2_goals"`
		Team1        string     `json:"team1"`
		Team2        string     `json:"team2"`
		HalfLength   int        `json:"half_length"`
		Date         *time.Time `json:"date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	create := &services.CreateMatchInput{
		TournamentID: input.TournamentID,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		Player1Goals: input.Player1Goals,
		Player2Goals: input.Player2Goals,
		Team1:        input.Team1,
		Team2:        input.Team2,
		HalfLength:   input.HalfLength,
	}
	if input.Date != nil {
		create.Date = *input.Date
	}

	match, err := h.matchService.Create(r.Context(), create)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := h.matchService.List(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Player1Goals *int    `json:"player1_goals"`
		Player2Goals *int    `json:"player2_goals"`
		Team1        *string `json:"team1"`
		Team2        *string `json:"team2"`
		HalfLength   *int    `json:"half_length"`
		Completed    *bool   `json:"completed"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), matchID, &services.UpdateMatchInput{
		Player1Goals: input.Player1Goals,
		Player2Goals: input.Player2Goals,
		Team1:        input.Team1,
		Team2:        input.Team2,
		HalfLength:   input.HalfLength,
		Completed:    input.Completed,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.matchService.Delete(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
