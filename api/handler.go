package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/getkayan/kayan-roles/core/logger"
	"github.com/getkayan/kayan-roles/core/rbac"
	"github.com/getkayan/kayan-roles/kgorm"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RoleReader returns the roles an identity holds.
type RoleReader interface {
	GetIdentityRoles(ctx context.Context, identityID string) ([]string, error)
}

// IdentityExtractor returns the ID of the authenticated editor.
type IdentityExtractor func(c echo.Context) (string, error)

var errUnauthenticated = errors.New("no authenticated identity")

// ContextIdentity reads the editor ID placed under "identity_id" by the
// session middleware.
func ContextIdentity(c echo.Context) (string, error) {
	id, ok := c.Get("identity_id").(string)
	if !ok || id == "" {
		return "", errUnauthenticated
	}
	return id, nil
}

type Handler struct {
	reader     RoleReader
	hierarchy  rbac.Hierarchy
	masterRole string
	identity   IdentityExtractor
}

func NewHandler(reader RoleReader, hierarchy rbac.Hierarchy, masterRole string) *Handler {
	return &Handler{
		reader:     reader,
		hierarchy:  hierarchy,
		masterRole: masterRole,
		identity:   ContextIdentity,
	}
}

// SetIdentityExtractor replaces ContextIdentity.
func (h *Handler) SetIdentityExtractor(fn IdentityExtractor) {
	h.identity = fn
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/roles/choices", h.HandleChoices)
	g.POST("/identities/:id/roles", h.HandleSubmitRoles)
}

// field builds the role field for the editor of the current request.
func (h *Handler) field(c echo.Context) (*rbac.RoleChoiceField, error) {
	editorID, err := h.identity(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	editorRoles, err := h.reader.GetIdentityRoles(c.Request().Context(), editorID)
	if errors.Is(err, kgorm.ErrIdentityNotFound) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	if err != nil {
		return nil, err
	}

	var opts []rbac.BuilderOption
	if h.masterRole != "" {
		opts = append(opts, rbac.WithMasterRole(h.masterRole))
	}
	return rbac.NewRoleChoiceField(rbac.NewEditableRolesBuilder(h.hierarchy, editorRoles, opts...)), nil
}

func (h *Handler) HandleChoices(c echo.Context) error {
	field, err := h.field(c)
	if err != nil {
		return h.fail(c, err)
	}

	opts, err := field.Configure()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) HandleSubmitRoles(c echo.Context) error {
	var body struct {
		Roles []string `json:"roles"`
	}
	if err := c.Bind(&body); err != nil {
		return h.Error(c, http.StatusBadRequest, "Invalid request body", err)
	}

	field, err := h.field(c)
	if err != nil {
		return h.fail(c, err)
	}

	subjectID := c.Param("id")
	prior, err := h.reader.GetIdentityRoles(c.Request().Context(), subjectID)
	if errors.Is(err, kgorm.ErrIdentityNotFound) {
		return h.Error(c, http.StatusNotFound, "Identity not found", err)
	}
	if err != nil {
		return h.fail(c, err)
	}

	sel, err := field.Submit(prior, body.Roles)
	var unknown *rbac.UnknownRoleError
	if errors.As(err, &unknown) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"status":       "Role selection rejected",
			"code":         http.StatusUnprocessableEntity,
			"error":        err.Error(),
			"role":         unknown.Role,
			"synchronized": false,
		})
	}
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"identity_id":  subjectID,
		"roles":        sel.Roles,
		"hidden":       sel.Hidden,
		"synchronized": true,
	})
}

// fail maps echo HTTP errors to their status and everything else to 500.
func (h *Handler) fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		return h.Error(c, he.Code, msg, nil)
	}
	logger.Log.Error("role request failed", zap.String("path", c.Path()), zap.Error(err))
	return h.Error(c, http.StatusInternalServerError, "Internal server error", err)
}

// Error writes the standard error envelope.
func (h *Handler) Error(c echo.Context, code int, message string, err error) error {
	resp := map[string]any{
		"status": message,
		"code":   code,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	return c.JSON(code, resp)
}
