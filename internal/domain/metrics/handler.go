package metrics

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/firstembrace/kmc/internal/domain/records"
	"github.com/firstembrace/kmc/internal/platform/auth"
	"github.com/firstembrace/kmc/internal/platform/timeutil"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/analytics", auth.RequireRole("admin", "physician", "nurse", "analyst"))

	g.GET("/dashboard", h.Dashboard)
	g.GET("/registration", h.Registration)
	g.GET("/kmc-initiation", h.Initiation)
	g.GET("/kmc-by-location", h.KMCByLocation)
	g.GET("/daily-kmc", h.DailyKMC)
	g.GET("/discharge-outcomes", h.Outcomes)
	g.GET("/critical-reasons", h.CriticalReasons)
	g.GET("/discharged-without-kmc", h.DischargedWithoutKMC)
	g.GET("/mortality", h.Mortality)
	g.GET("/mortality/by-hospital", h.MortalityByHospital)
	g.GET("/mortality/list", h.MortalityList)
	g.GET("/follow-up-completion", h.Completion)
	g.GET("/skin-contact", h.SkinContact)
	g.GET("/hospital-stay", h.HospitalStay)
	g.GET("/nurse-activity", h.NurseActivity)
	g.GET("/kmc-verification", h.VerifyKMC)
	g.GET("/observation-verification", h.VerifyObservations)
	g.GET("/system-indicators", h.System)
	g.GET("/program-indicators", h.Program)

	admin := api.Group("/analytics", auth.RequireRole("admin"))
	admin.POST("/cache/invalidate", h.InvalidateCache)
}

// parseQuery reads the shared filter parameters: from and to bound the
// birth window, hospital and uid narrow the selection. Both parameters
// repeat and also accept comma-separated lists.
func parseQuery(c echo.Context) (records.Query, error) {
	var q records.Query

	if raw := c.QueryParam("from"); raw != "" {
		t, ok := timeutil.Normalize(raw)
		if !ok {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid from date")
		}
		q.From = &t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, ok := timeutil.Normalize(raw)
		if !ok {
			return q, echo.NewHTTPError(http.StatusBadRequest, "invalid to date")
		}
		q.To = &t
	}
	q.Hospitals = auth.ScopeHospitals(multiParam(c, "hospital"),
		auth.HospitalsFromContext(c.Request().Context()))
	q.UIDs = multiParam(c, "uid")
	return q, nil
}

func multiParam(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// respond runs one panel computation and writes it out.
func respond[T any](c echo.Context, compute func(records.Query) (T, error)) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	out, err := compute(q)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "analytics unavailable")
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Dashboard(c echo.Context) error {
	return respond(c, func(q records.Query) (*Dashboard, error) {
		return h.svc.Dashboard(c.Request().Context(), q)
	})
}

func (h *Handler) Registration(c echo.Context) error {
	return respond(c, func(q records.Query) (RegistrationTimeliness, error) {
		return h.svc.Registration(c.Request().Context(), q)
	})
}

func (h *Handler) Initiation(c echo.Context) error {
	return respond(c, func(q records.Query) (KMCInitiation, error) {
		return h.svc.Initiation(c.Request().Context(), q)
	})
}

func (h *Handler) KMCByLocation(c echo.Context) error {
	return respond(c, func(q records.Query) ([]LocationKMC, error) {
		return h.svc.KMCByLocation(c.Request().Context(), q)
	})
}

func (h *Handler) DailyKMC(c echo.Context) error {
	return respond(c, func(q records.Query) ([]DailyKMCCell, error) {
		return h.svc.DailyKMC(c.Request().Context(), q)
	})
}

func (h *Handler) Outcomes(c echo.Context) error {
	return respond(c, func(q records.Query) (DischargeOutcomes, error) {
		return h.svc.Outcomes(c.Request().Context(), q)
	})
}

func (h *Handler) CriticalReasons(c echo.Context) error {
	return respond(c, func(q records.Query) (CriticalReasonsReport, error) {
		return h.svc.CriticalReasons(c.Request().Context(), q)
	})
}

func (h *Handler) DischargedWithoutKMC(c echo.Context) error {
	return respond(c, func(q records.Query) ([]HospitalKMCGap, error) {
		return h.svc.DischargedWithoutKMC(c.Request().Context(), q)
	})
}

func (h *Handler) Mortality(c echo.Context) error {
	return respond(c, func(q records.Query) (DeathRates, error) {
		return h.svc.Mortality(c.Request().Context(), q)
	})
}

func (h *Handler) MortalityByHospital(c echo.Context) error {
	return respond(c, func(q records.Query) ([]HospitalMortality, error) {
		return h.svc.MortalityByHospital(c.Request().Context(), q)
	})
}

func (h *Handler) MortalityList(c echo.Context) error {
	return respond(c, func(q records.Query) ([]DeathDetail, error) {
		return h.svc.MortalityList(c.Request().Context(), q)
	})
}

func (h *Handler) Completion(c echo.Context) error {
	return respond(c, func(q records.Query) (FollowUpCompletion, error) {
		return h.svc.Completion(c.Request().Context(), q)
	})
}

func (h *Handler) SkinContact(c echo.Context) error {
	return respond(c, func(q records.Query) (SkinContactReport, error) {
		return h.svc.SkinContact(c.Request().Context(), q)
	})
}

func (h *Handler) HospitalStay(c echo.Context) error {
	return respond(c, func(q records.Query) (HospitalStayReport, error) {
		return h.svc.HospitalStay(c.Request().Context(), q)
	})
}

func (h *Handler) NurseActivity(c echo.Context) error {
	return respond(c, func(q records.Query) (NurseActivityReport, error) {
		return h.svc.NurseActivity(c.Request().Context(), q)
	})
}

func (h *Handler) VerifyKMC(c echo.Context) error {
	return respond(c, func(q records.Query) (KMCVerification, error) {
		return h.svc.VerifyKMC(c.Request().Context(), q)
	})
}

func (h *Handler) VerifyObservations(c echo.Context) error {
	return respond(c, func(q records.Query) (ObservationVerification, error) {
		return h.svc.VerifyObservations(c.Request().Context(), q)
	})
}

func (h *Handler) System(c echo.Context) error {
	return respond(c, func(q records.Query) (SystemIndicators, error) {
		return h.svc.System(c.Request().Context(), q)
	})
}

func (h *Handler) Program(c echo.Context) error {
	return respond(c, func(q records.Query) (ProgramIndicators, error) {
		return h.svc.Program(c.Request().Context(), q)
	})
}

func (h *Handler) InvalidateCache(c echo.Context) error {
	h.svc.InvalidateCache()
	return c.NoContent(http.StatusNoContent)
}
