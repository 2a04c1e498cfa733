// internal/app/features/billing/billing.go
package billing

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	invoicestore "github.com/dalemusser/eventhub/internal/app/store/invoices"
	"github.com/dalemusser/eventhub/internal/app/store/storeutil"
	"github.com/dalemusser/eventhub/internal/app/system/activitylog"
	"github.com/dalemusser/eventhub/internal/app/system/authutil"
	"github.com/dalemusser/eventhub/internal/app/system/invoicepdf"
	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/normalize"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgInvoiceNotFound = "Invoice not found"
	msgInvalidBody     = "Invalid request body"
	msgCustomerName    = "Customer name is required"
	msgCustomerEmail   = "A valid email address is required"
	msgNoServices      = "At least one service is required"
	msgNegativeAmounts = "Discount and GST cannot be negative"
)

// idAttempts bounds invoice number generation when a number is taken.
const idAttempts = 5

// Handler serves invoices.
type Handler struct {
	store      *invoicestore.Store
	letterhead invoicepdf.Letterhead
	activity   *activitylog.Logger
	errLog     *errorsfeature.ErrorLogger
	logger     *zap.Logger
	now        func() time.Time
	newID      func(time.Time) (string, error)
}

// NewHandler creates a new billing Handler. lh is printed on every PDF.
func NewHandler(db *mongo.Database, lh invoicepdf.Letterhead, activity *activitylog.Logger, errLog *errorsfeature.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		store:      invoicestore.New(db),
		letterhead: lh,
		activity:   activity,
		errLog:     errLog,
		logger:     logger,
		now:        time.Now,
		newID:      invoicepdf.NewInvoiceID,
	}
}

// Routes returns a chi.Router with billing routes mounted. Every route
// requires an admin.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(adminOnly)
	r.Get("/invoices", h.List)
	r.Get("/invoices/{id}", h.Get)
	r.Post("/generate", h.Generate)
	r.Get("/download/{id}", h.Download)
	return r
}

type invoicePage struct {
	Invoices []models.Invoice `json:"invoices"`
	Page     int              `json:"page"`
	Pages    int64            `json:"pages"`
	Total    int64            `json:"total"`
}

// List handles GET /api/v1/billing/invoices?page=&limit=&search=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := normalize.Paging(q.Get("page"), q.Get("limit"), 10, 100)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	invoices, total, err := h.store.Page(ctx, strings.TrimSpace(q.Get("search")), int64(page), int64(limit))
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list invoices", err)
		return
	}
	jsonutil.OK(w, invoicePage{
		Invoices: invoices,
		Page:     page,
		Pages:    storeutil.Pages(total, int64(limit)),
		Total:    total,
	})
}

type lineInput struct {
	ServiceName string  `json:"serviceName"`
	UnitPrice   float64 `json:"unitPrice"`
	Qty         float64 `json:"qty"`
}

type generateInput struct {
	User     models.InvoiceCustomer `json:"user"`
	Services []lineInput            `json:"services"`
	Discount float64                `json:"discount"`
	GST      float64                `json:"gst"`
}

// toInvoice prices every line and totals the invoice, or returns a
// message when in is rejected.
func (in generateInput) toInvoice() (models.Invoice, string) {
	inv := models.Invoice{
		Customer: models.InvoiceCustomer{
			Name:  strings.TrimSpace(in.User.Name),
			Email: strings.TrimSpace(in.User.Email),
		},
		Discount: in.Discount,
		GST:      in.GST,
		Status:   models.InvoicePaid,
	}
	switch {
	case inv.Customer.Name == "":
		return inv, msgCustomerName
	case inv.Customer.Email != "" && !authutil.ValidEmail(inv.Customer.Email):
		return inv, msgCustomerEmail
	case len(in.Services) == 0:
		return inv, msgNoServices
	case in.Discount < 0 || in.GST < 0:
		return inv, msgNegativeAmounts
	}

	inv.Services = make([]models.InvoiceLine, 0, len(in.Services))
	for i, s := range in.Services {
		name := strings.TrimSpace(s.ServiceName)
		if name == "" || s.UnitPrice < 0 || s.Qty <= 0 {
			return inv, "Service " + strconv.Itoa(i+1) + " needs a name, a price of 0 or more and a positive quantity"
		}
		inv.Services = append(inv.Services, models.InvoiceLine{
			ServiceName: name,
			UnitPrice:   s.UnitPrice,
			Qty:         s.Qty,
			Amount:      s.UnitPrice * s.Qty,
		})
	}
	inv.TotalAmount = inv.Subtotal() - inv.Discount + inv.GST
	return inv, ""
}

// Generate handles POST /api/v1/billing/generate. A fresh invoice number is
// drawn whenever the previous one is already taken.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var in generateInput
	if err := jsonutil.Decode(r, &in); err != nil && !errors.Is(err, jsonutil.ErrEmptyBody) {
		jsonutil.BadRequest(w, msgInvalidBody)
		return
	}
	inv, msg := in.toInvoice()
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := h.now()
	inv.Date = now

	var (
		created models.Invoice
		err     error
	)
	for attempt := 0; attempt < idAttempts; attempt++ {
		if inv.InvoiceID, err = h.newID(now); err != nil {
			break
		}
		created, err = h.store.Create(ctx, inv)
		if !errors.Is(err, invoicestore.ErrDuplicateInvoiceID) {
			break
		}
		h.logger.Debug("invoice number taken, retrying", zap.String("invoice_id", inv.InvoiceID))
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to create invoice", err)
		return
	}

	h.activity.Log(ctx, activitylog.ActionGenerated, activitylog.ModuleBilling,
		"Invoice #"+created.InvoiceID, map[string]any{"amount": created.TotalAmount})
	jsonutil.Created(w, created)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.NotFound(w, msgInvoiceNotFound)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.store.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.NotFound(w, msgInvoiceNotFound)
		return nil, false
	}
	if err != nil {
		h.errLog.ServerError(w, r, "failed to load invoice", err, zap.String("invoice_id", id.Hex()))
		return nil, false
	}
	return inv, true
}

// Get handles GET /api/v1/billing/invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if inv, ok := h.load(w, r); ok {
		jsonutil.OK(w, inv)
	}
}

// Download handles GET /api/v1/billing/download/{id}. The document is
// rendered in full before any header is written, so a render failure still
// produces a JSON error.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.load(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := invoicepdf.Render(&buf, *inv, h.letterhead); err != nil {
		h.errLog.ServerError(w, r, "failed to render invoice pdf", err, zap.String("invoice", inv.InvoiceID))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+invoicepdf.Filename(*inv))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("invoice download interrupted", zap.String("invoice", inv.InvoiceID), zap.Error(err))
	}
}
