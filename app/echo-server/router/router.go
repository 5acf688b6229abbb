package router

import (
	"net/http"

	"aiImageStudio/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations", authRequired)
	reco.GET("", handler.Recommend)
	reco.GET("/debug", handler.Explain)
	reco.POST("/feedback", handler.Feedback)
}

func SetRecommendAdminRoutes(api *echo.Group, handler *rest.RecommendAdminHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	admin := api.Group("/admin/recommend", authRequired, adminOnly)

	admin.GET("/config", handler.GetConfig)
	admin.PUT("/config", handler.UpsertConfig)

	admin.GET("/variants/:user_id", handler.GetVariantPin)
	admin.PUT("/variants/:user_id", handler.PinVariant)
	admin.DELETE("/variants/:user_id", handler.UnpinVariant)
}

func SetOpsRoutes(e *echo.Echo, ready func() error) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := ready(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
}
