// Package importfile accepts uploaded CSV and JSON record files.
package importfile

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/moneynote/internal/auth"
	txHandler "github.com/MrJamesThe3rd/moneynote/internal/http/transaction"
	"github.com/MrJamesThe3rd/moneynote/internal/http/respond"
	"github.com/MrJamesThe3rd/moneynote/internal/importer"
	"github.com/MrJamesThe3rd/moneynote/internal/matching"
	"github.com/MrJamesThe3rd/moneynote/internal/transaction"
)

const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	matchSvc  *matching.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, matchSvc *matching.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		matchSvc:  matchSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported     int                             `json:"imported"`
	Transactions []txHandler.TransactionResponse `json:"transactions"`
}

type createParamsDTO struct {
	Amount      int64            `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        time.Time        `json:"date"`
}

type conflictDTO struct {
	Incoming createParamsDTO               `json:"incoming"`
	Existing txHandler.TransactionResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

// importFile reads the multipart "file" field. The "format" field picks the
// parser; without it the file extension does.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := r.FormValue("format")
	if name == "" {
		name = filepath.Ext(header.Filename)
	}

	format, err := importer.ParseFormat(name)
	if err != nil {
		respond.Error(w, err)
		return
	}

	params, err := h.importSvc.Import(format, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	owner := auth.UserID(r.Context())

	if err := h.matchSvc.FillCategories(r.Context(), owner, params); err != nil {
		slog.Warn("failed to suggest categories", "error", err)
	}

	result, err := h.txSvc.ImportBatch(r.Context(), owner, params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: txHandler.ToResponse(c.Existing),
			})
		}

		respond.JSON(w, http.StatusConflict, resp)

		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]transaction.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, transaction.CreateParams{
			Amount:      p.Amount,
			Type:        p.Type,
			Description: p.Description,
			Category:    p.Category,
			Date:        p.Date,
		})
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), auth.UserID(r.Context()), params)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: txHandler.ToResponseList(txs),
	}
}

func toParamsDTO(p transaction.CreateParams) createParamsDTO {
	return createParamsDTO{
		Amount:      p.Amount,
		Type:        p.Type,
		Description: p.Description,
		Category:    p.Category,
		Date:        p.Date,
	}
}
