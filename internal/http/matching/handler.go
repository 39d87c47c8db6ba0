package matching

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	"github.com/MrJamesThe3rd/moneynote/internal/http/respond"
	"github.com/MrJamesThe3rd/moneynote/internal/matching"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

// suggest answers ?description=&type= with the category a new record
// would get.
func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	description := r.URL.Query().Get("description")

	typ := transaction.Type(r.URL.Query().Get("type"))
	if typ == "" {
		typ = transaction.TypeExpense
	}

	if !typ.Valid() {
		respond.Error(w, transaction.ErrInvalidType)
		return
	}

	category, err := h.svc.Suggest(r.Context(), auth.UserID(r.Context()), description, typ)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{
		Description: description,
		Category:    category,
	})
}

type learnRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.Learn(r.Context(), auth.UserID(r.Context()), req.Pattern, req.Category); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
