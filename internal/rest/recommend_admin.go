package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"aiImageStudio/business/recommend"
	"aiImageStudio/domain"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"
)

// VariantPinStore manages per-user variant pins.
type VariantPinStore interface {
	recommend.VariantRepository
	DeleteVariant(ctx context.Context, userID uint) error
}

type RecommendAdminHandler struct {
	cfgRepo    recommend.ConfigRepository
	pins       VariantPinStore
	defaultCfg recommend.Config
	validate   *validator.Validate
}

type VariantPinRequest struct {
	Variant *int `json:"variant" validate:"required,gte=0"`
}

func NewRecommendAdminHandler(cfgRepo recommend.ConfigRepository, pins VariantPinStore, defaultCfg recommend.Config) *RecommendAdminHandler {
	return &RecommendAdminHandler{
		cfgRepo:    cfgRepo,
		pins:       pins,
		defaultCfg: defaultCfg,
		validate:   validator.New(),
	}
}

// GET /api/v1/admin/recommend/config?variant=N
// returns the stored override of one variant and the effective config it produces
func (h *RecommendAdminHandler) GetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	variant, err := variantParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	base, warning, err := h.effective(ctx, recommend.BaseVariant, h.defaultCfg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	override, effective := json.RawMessage("{}"), base
	if variant != recommend.BaseVariant {
		var variantWarning string
		effective, variantWarning, err = h.effective(ctx, variant, base)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
		if variantWarning != "" {
			warning = variantWarning
		}
	}

	row, ok, err := h.cfgRepo.GetConfig(ctx, recommend.DefaultConfigName, variant)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if ok && len(row.Settings) > 0 {
		override = json.RawMessage(row.Settings)
	}

	resp := echo.Map{
		"variant":   variant,
		"override":  override,
		"effective": effective,
	}
	if warning != "" {
		resp["warning"] = warning
	}
	return c.JSON(http.StatusOK, resp)
}

// PUT /api/v1/admin/recommend/config?variant=N
// body: partial Config JSON, e.g. {"scoring":{"min_relevance":35}}
// variant 0 merges over the defaults, any other variant over variant 0
func (h *RecommendAdminHandler) UpsertConfig(c echo.Context) error {
	ctx := c.Request().Context()

	variant, err := variantParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<20))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid body: " + err.Error()})
	}
	if !json.Valid(raw) {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "body must be a JSON object"})
	}

	base := h.defaultCfg
	if variant != recommend.BaseVariant {
		if base, _, err = h.effective(ctx, recommend.BaseVariant, h.defaultCfg); err != nil {
			return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
		}
	}

	effective, err := recommend.MergeConfig(base, raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	row := domain.RecommendConfig{
		Name:     recommend.DefaultConfigName,
		Variant:  variant,
		Settings: datatypes.JSON(raw),
	}
	if err := h.cfgRepo.UpsertConfig(ctx, row); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"variant":   variant,
		"effective": effective,
	})
}

// GET /api/v1/admin/recommend/variants/:user_id
func (h *RecommendAdminHandler) GetVariantPin(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	variant, ok, err := h.pins.GetVariant(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, ResponseError{Message: "no variant pinned"})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(echo.Map{"user_id": userID, "variant": variant}))
}

// PUT /api/v1/admin/recommend/variants/:user_id
// body: {"variant": 1}
func (h *RecommendAdminHandler) PinVariant(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req VariantPinRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.pins.UpsertVariant(c.Request().Context(), userID, *req.Variant); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(echo.Map{"user_id": userID, "variant": *req.Variant}))
}

// DELETE /api/v1/admin/recommend/variants/:user_id
func (h *RecommendAdminHandler) UnpinVariant(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.pins.DeleteVariant(c.Request().Context(), userID); err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

// effective merges one variant's stored row over base. An invalid stored
// row is reported as a warning and base is returned.
func (h *RecommendAdminHandler) effective(ctx context.Context, variant int, base recommend.Config) (recommend.Config, string, error) {
	row, ok, err := h.cfgRepo.GetConfig(ctx, recommend.DefaultConfigName, variant)
	if err != nil {
		return recommend.Config{}, "", err
	}
	if !ok || len(row.Settings) == 0 {
		return base, "", nil
	}

	merged, err := recommend.MergeConfig(base, row.Settings)
	if err != nil {
		return base, "stored override is invalid and ignored: " + err.Error(), nil
	}
	return merged, "", nil
}

func variantParam(c echo.Context) (int, error) {
	raw := c.QueryParam("variant")
	if raw == "" {
		return recommend.BaseVariant, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("variant must be a non-negative integer")
	}
	return v, nil
}

func userIDParam(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("user_id must be a positive integer")
	}
	return uint(id), nil
}
