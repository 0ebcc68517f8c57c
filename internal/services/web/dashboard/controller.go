package dashboard

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/NordCoder/homelab/internal/obs"
	"github.com/NordCoder/homelab/internal/services/web/auth"
	"github.com/NordCoder/homelab/internal/services/web/views"
)

type Controller struct {
	log   *zap.Logger
	uc    *Usecase
	views *views.Renderer
}

func NewController(uc *Usecase, v *views.Renderer, log *zap.Logger) *Controller {
	return &Controller{log: obs.Component(log, "web.dashboard"), uc: uc, views: v}
}

// Dashboard serves GET /dashboard.
func (c *Controller) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromCtx(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	list, err := c.uc.Render(r.Context(), id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}

	page := views.DashboardPage{Username: id.Username, Services: make([]views.ServiceRow, 0, len(list))}
	for _, svc := range list {
		page.Services = append(page.Services, views.NewServiceRow(svc))
	}
	if err := c.views.Dashboard(w, page); err != nil {
		c.writeErr(w, r, err)
	}
}

// AddService serves POST /add_service.
func (c *Controller) AddService(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromCtx(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	if _, err := c.uc.AddService(r.Context(), id, r.PostFormValue("name"), r.PostFormValue("url")); err != nil {
		c.writeErr(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Delete serves GET /delete/{id}.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromCtx(r.Context())
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	// unsigned digits only, no sign
	serviceID, err := strconv.ParseUint(r.PathValue("id"), 10, 63)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := c.uc.Delete(r.Context(), id, int64(serviceID)); err != nil {
		c.writeErr(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (c *Controller) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrServiceInvalid):
		http.Error(w, "Name and URL required", http.StatusBadRequest)
	default:
		obs.WithTrace(r.Context(), c.log).Error("dashboard request failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
