package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"formatrack_backend/middleware"
	"formatrack_backend/models"
	"formatrack_backend/receipt"
	"formatrack_backend/rules"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type paymentStore interface {
	GetClient(ctx context.Context, id int) (models.Client, error)
	store.Payments
}

type PaymentHandler struct {
	store    paymentStore
	receipts receipt.Renderer
	now      Clock
}

func NewPaymentHandler(st paymentStore, receipts receipt.Renderer, now Clock) *PaymentHandler {
	return &PaymentHandler{store: st, receipts: receipts, now: now}
}

func (h *PaymentHandler) GetPayments(c *gin.Context) {
	payments, err := h.store.ListPayments(c.Request.Context())
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, payments)
}

// CreatePayment validates the amount against the client's remaining balance, then
// records the payment and the balance increment as one unit.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	client, err := h.store.GetClient(ctx, req.ClientID)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	if err := rules.ValidatePayment(req.Montant, client.MontantRestant); err != nil {
		respondError(c, err, "")
		return
	}

	user, _ := middleware.CurrentUser(c)
	payment, err := h.store.RecordPayment(ctx, client.ID, req.Montant, user.ID, h.now())
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetReceipt renders the printable receipt of one payment.
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	payment, err := h.store.GetPayment(ctx, id)
	if err != nil {
		respondError(c, err, "Paiement non trouvé")
		return
	}
	client, err := h.store.GetClient(ctx, payment.ClientID)
	if err != nil {
		respondError(c, err, clientNotFound)
		return
	}

	data := receipt.Data{Payment: payment, Client: client}
	var buf bytes.Buffer
	if err := h.receipts.Render(&buf, data); err != nil {
		respondError(c, fmt.Errorf("render receipt %d: %w", id, err), "")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, receipt.Filename(data)))
	c.Data(http.StatusOK, h.receipts.ContentType(), buf.Bytes())
}
