package internal

import (
	"net/http"

	"pvd/internal/controllers"
	"pvd/internal/providers"
	"pvd/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/stats", http.HandlerFunc(apiController.GetStats))
	routers.Get("/report", http.HandlerFunc(apiController.GetReport))
	routers.Get("/visitors", http.HandlerFunc(apiController.GetVisitors))
	routers.Get("/alerts", http.HandlerFunc(apiController.GetAlerts))
	routers.Post("/alerts/read", http.HandlerFunc(apiController.MarkAlertRead))
	routers.Handle("/settings", http.HandlerFunc(apiController.Settings))
	routers.Get("/monitor/status", http.HandlerFunc(apiController.MonitorStatus))
	routers.Post("/monitor/start", http.HandlerFunc(apiController.StartMonitoring))
	routers.Post("/monitor/stop", http.HandlerFunc(apiController.StopMonitoring))
	return routers
}
