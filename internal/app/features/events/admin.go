package events

import (
	"context"
	"net/http"

	"github.com/dalemusser/eventhub/internal/app/system/jsonutil"
	"github.com/dalemusser/eventhub/internal/app/system/timeouts"
	"github.com/dalemusser/eventhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type organizerRef struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

type categoryRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// adminEventRow is an event with its organizer and category resolved.
// A reference to a deleted document is rendered as null.
type adminEventRow struct {
	models.Event
	Organizer *organizerRef `json:"organizer"`
	Category  *categoryRef  `json:"category"`
}

// AdminList handles GET /api/admin/events.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.events.All(ctx)
	if err != nil {
		h.errLog.ServerError(w, r, "failed to list events", err)
		return
	}

	var orgIDs, catIDs []primitive.ObjectID
	for _, e := range events {
		if e.Organizer != nil {
			orgIDs = append(orgIDs, *e.Organizer)
		}
		if e.Category != nil {
			catIDs = append(catIDs, *e.Category)
		}
	}

	var (
		organizers map[primitive.ObjectID]models.User
		categories map[primitive.ObjectID]models.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		organizers, err = h.users.GetByIDs(gctx, orgIDs)
		return err
	})
	g.Go(func() (err error) {
		categories, err = h.categories.GetByIDs(gctx, catIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		h.errLog.ServerError(w, r, "failed to resolve event references", err)
		return
	}

	rows := make([]adminEventRow, 0, len(events))
	for _, e := range events {
		row := adminEventRow{Event: e}
		if e.Organizer != nil {
			if u, ok := organizers[*e.Organizer]; ok {
				row.Organizer = &organizerRef{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
		if e.Category != nil {
			if c, ok := categories[*e.Category]; ok {
				row.Category = &categoryRef{ID: c.ID, Name: c.Name}
			}
		}
		rows = append(rows, row)
	}
	jsonutil.OK(w, rows)
}
