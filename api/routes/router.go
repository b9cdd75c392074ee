package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillbazaar/backend/api/controllers"
	"github.com/skillbazaar/backend/api/middleware"
	"github.com/skillbazaar/backend/internal/auth"
	"github.com/skillbazaar/backend/internal/messages"
	"github.com/skillbazaar/backend/internal/notifications"
	"github.com/skillbazaar/backend/internal/orders"
	"github.com/skillbazaar/backend/internal/payments"
	"github.com/skillbazaar/backend/internal/reviews"
	"github.com/skillbazaar/backend/internal/users"
	"github.com/skillbazaar/backend/pkg/auth/session"
	"github.com/skillbazaar/backend/pkg/config"
	"github.com/skillbazaar/backend/pkg/db"
	"github.com/skillbazaar/backend/pkg/logger"
	"github.com/skillbazaar/backend/pkg/metrics"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   db.Pinger
	Session session.AccessSessionChecker

	Registry *prometheus.Registry

	Auth          auth.Service
	Users         users.Service
	Orders        orders.Service
	Payments      payments.Service
	Notifications notifications.Service
	Reviews       reviews.Service
	Messages      messages.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// A nil *Registry passed through the Registerer interface is not a nil
	// interface, so build the metrics only when a registry is present.
	var httpMetrics *metrics.HTTPMetrics
	if deps.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(deps.Registry)
	}

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(deps.Auth, deps.Logger))
		r.Post("/login", controllers.AuthLogin(deps.Auth, deps.Logger))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, deps.Logger))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, deps.Logger))
	})

	// The gateway redirects here after checkout, outside any auth session.
	r.Get("/api/v1/payments/esewa/callback", controllers.EsewaCallback(deps.Payments, deps.Logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Session, deps.Logger))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.MyProfile(deps.Users, deps.Logger))
			r.Put("/me", controllers.UpdateMyProfile(deps.Users, deps.Logger))
			r.Get("/{userId}", controllers.UserProfile(deps.Users, deps.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOpenOrders(deps.Orders, deps.Logger))
			r.Post("/", controllers.CreateOrder(deps.Orders, deps.Logger))
			r.Get("/mine", controllers.ListMyOrders(deps.Orders, deps.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, deps.Logger))
			r.Post("/{orderId}/transition", controllers.TransitionOrder(deps.Orders, deps.Logger))
			r.Post("/{orderId}/decision", controllers.DecideOrder(deps.Orders, deps.Logger))
			r.Get("/{orderId}/reviews", controllers.ListReviews(deps.Reviews, deps.Logger))
			r.Post("/{orderId}/reviews", controllers.AddReview(deps.Reviews, deps.Logger))
		})

		r.Post("/purchases", controllers.InitiatePurchase(deps.Payments, deps.Logger))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, deps.Logger))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, deps.Logger))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, deps.Logger))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, deps.Logger))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Post("/", controllers.SendMessage(deps.Messages, deps.Logger))
			r.Get("/{userId}", controllers.ConversationWith(deps.Messages, deps.Logger))
		})
	})

	return r
}
