package handlers

import (
	"encoding/json"
	"net/http"

	"formatrack_backend/models"
	"formatrack_backend/rules"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const clientNotFound = "Client non trouvé"

type ClientHandler struct {
	store store.Clients
	now   Clock
}

func NewClientHandler(st store.Clients, now Clock) *ClientHandler {
	return &ClientHandler{store: st, now: now}
}

// updateClientRequest accepts the read-only projection fields the edit form echoes
// back, so a whole client object can be PUT; they are never written.
type updateClientRequest struct {
	models.ClientPatch
	ID                json.RawMessage `json:"id"`
	MontantRestant    json.RawMessage `json:"montant_restant"`
	CreatedAt         json.RawMessage `json:"created_at"`
	DateStatutModifie json.RawMessage `json:"date_statut_modifie"`
}

// bindStrictJSON decodes the body rejecting unknown fields, then runs the binding tags.
func bindStrictJSON(c *gin.Context, obj any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(obj); err != nil {
		return invalidRequest(err)
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return invalidRequest(err)
	}
	return nil
}

func (h *ClientHandler) GetClients(c *gin.Context) {
	clients, err := h.store.ListClients(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	client, err := h.store.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req models.CreateClientRequest
	if err := bindStrictJSON(c, &req); err != nil {
		respondError(c, err, "")
		return
	}

	client := rules.NewClient(req, h.now())
	if err := rules.ValidateClient(client); err != nil {
		respondError(c, err, "")
		return
	}

	created, err := h.store.CreateClient(c.Request.Context(), client)
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateClient applies a partial update. The result is validated against the
// current row before anything is written.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req updateClientRequest
	if err := bindStrictJSON(c, &req); err != nil {
		respondError(c, err, "")
		return
	}

	ctx := c.Request.Context()
	current, err := h.store.GetClient(ctx, id)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}

	now := h.now()
	if err := rules.ValidateClient(rules.ApplyClientPatch(current, req.ClientPatch, now)); err != nil {
		respondError(c, err, "")
		return
	}

	updated, err := h.store.UpdateClient(ctx, id, req.ClientPatch, now)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteClient(c.Request.Context(), id); err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client supprimé avec succès"})
}

func (h *ClientHandler) GetClientPayments(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	payments, err := h.store.ListClientPayments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *ClientHandler) GetClientIncidents(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	incidents, err := h.store.ListClientIncidents(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	c.JSON(http.StatusOK, incidents)
}
