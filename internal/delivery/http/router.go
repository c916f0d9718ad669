package http

import (
	"log/slog"
	"net/http"

	"churchadmin/internal/delivery/http/controllers"
	"churchadmin/internal/delivery/http/helpers"
	"churchadmin/internal/delivery/http/middleware"
	"churchadmin/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the HTTP controllers mounted by NewRouter.
type Controllers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Comcell   *controllers.ComcellController
	Teams     *controllers.TeamController
	CoreEvent *controllers.CoreEventController
	Events    *controllers.EventController
	Videos    *controllers.VideoController
}

// NewRouter initializes the HTTP router with all application routes.
// metricsHandler is served on GET /metrics when non-nil.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Public
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/requestResetPasswordLink", c.Auth.RequestResetPasswordLink)
	mux.HandleFunc("POST /auth/resetPassword", c.Auth.ResetPassword)
	mux.HandleFunc("GET /core/event/getAllEventPublic", c.CoreEvent.GetAllEventPublic)
	mux.HandleFunc("GET /core/event/getAllPostEventPublic", c.CoreEvent.GetAllPastEventPublic)

	// Auth
	mux.HandleFunc("GET /auth/profile", auth(c.Auth.Profile))

	// Users
	mux.HandleFunc("GET /users/getAll", auth(c.Users.ListUsers))
	mux.HandleFunc("GET /users/getDetail/{id}", auth(c.Users.GetUser))
	mux.HandleFunc("POST /users/profile/edit", auth(c.Users.EditProfile))
	mux.HandleFunc("POST /users/setRole/{id}", auth(c.Users.SetRole))
	mux.HandleFunc("POST /users/setStatus/{id}", auth(c.Users.SetStatus))
	mux.HandleFunc("GET /users/roles", auth(c.Users.ListRoles))

	// Comcell groups
	mux.HandleFunc("POST /comcell/createComcellGroup", auth(c.Comcell.CreateGroup))
	mux.HandleFunc("GET /comcell/getAll", auth(c.Comcell.ListGroups))
	mux.HandleFunc("GET /comcell/getAllAdult", auth(c.Comcell.ListAdultGroups))
	mux.HandleFunc("GET /comcell/getAllYouth", auth(c.Comcell.ListYouthGroups))
	mux.HandleFunc("GET /comcell/getComcellGroupDetail/{id}", auth(c.Comcell.GetGroupDetail))
	mux.HandleFunc("GET /comcell/getComcellGroupMembers/{id}", auth(c.Comcell.GetGroupMembers))
	mux.HandleFunc("GET /comcell/getComcellFromUserId/{userId}", auth(c.Comcell.GetGroupByUser))
	mux.HandleFunc("POST /comcell/updateComcellGroup/{id}", auth(c.Comcell.UpdateGroup))
	mux.HandleFunc("DELETE /comcell/deleteComcellGroup/{id}", auth(c.Comcell.DeleteGroup))
	mux.HandleFunc("POST /comcell/addMemberToComcellGroup", auth(c.Comcell.AddMembers))
	mux.HandleFunc("POST /comcell/setMemberDetail", auth(c.Comcell.SetMemberRole))
	mux.HandleFunc("POST /comcell/removeMemberFromComcellGroup", auth(c.Comcell.RemoveMember))

	// Teams
	mux.HandleFunc("GET /teams/getAllMain", auth(c.Teams.ListMainTeams))
	mux.HandleFunc("GET /teams/getAllOther", auth(c.Teams.ListOtherTeams))
	mux.HandleFunc("POST /teams/create", auth(c.Teams.CreateTeam))
	mux.HandleFunc("DELETE /teams/delete/{id}", auth(c.Teams.DeleteTeam))
	mux.HandleFunc("POST /teams/getMembers", auth(c.Teams.GetMembers))
	mux.HandleFunc("POST /teams/getNonMembers", auth(c.Teams.GetNonMembers))
	mux.HandleFunc("POST /teams/addMemberToTeam", auth(c.Teams.AddMembers))
	mux.HandleFunc("POST /teams/setMemberDetail", auth(c.Teams.SetMemberDetail))
	mux.HandleFunc("POST /teams/removeMemberFromTeam", auth(c.Teams.RemoveMember))
	mux.HandleFunc("POST /teams/getAllPositions", auth(c.Teams.ListPositions))
	mux.HandleFunc("POST /teams/createPosition", auth(c.Teams.CreatePosition))
	mux.HandleFunc("DELETE /teams/deletePosition/{id}", auth(c.Teams.DeletePosition))

	// Core events
	mux.HandleFunc("POST /core/event/create", auth(c.CoreEvent.CreateEvent))
	mux.HandleFunc("GET /core/event/getAllEventAdmin", auth(c.CoreEvent.GetAllEventAdmin))
	mux.HandleFunc("GET /core/event/getAllPostEventAdmin", auth(c.CoreEvent.GetAllPastEventAdmin))
	mux.HandleFunc("GET /core/event/get/{id}", auth(c.CoreEvent.GetEventByID))
	mux.HandleFunc("PUT /core/event/update/{id}", auth(c.CoreEvent.UpdateEvent))
	mux.HandleFunc("DELETE /core/event/delete/{id}", auth(c.CoreEvent.DeleteEvent))

	// Group events and attendance
	mux.HandleFunc("GET /events/getAllEventByGroupId/{id}", auth(c.Events.GetAllEventByGroupID))
	mux.HandleFunc("GET /events/getComcellEventsByGroupId/{id}", auth(c.Events.GetComcellEventsByGroupID))
	mux.HandleFunc("POST /events/getAttendance", auth(c.Events.GetAttendance))
	mux.HandleFunc("POST /events/updateAttendance", auth(c.Events.UpdateAttendance))
	mux.HandleFunc("GET /events/getAttendanceStats/{groupId}", auth(c.Events.GetAttendanceStats))

	// Videos
	mux.HandleFunc("POST /videos", auth(c.Videos.CreateVideo))
	mux.HandleFunc("GET /videos", auth(c.Videos.ListVideos))
	mux.HandleFunc("GET /videos/tags/all", auth(c.Videos.ListTags))
	mux.HandleFunc("GET /videos/{id}", auth(c.Videos.GetVideo))
	mux.HandleFunc("PUT /videos/{id}", auth(c.Videos.UpdateVideo))
	mux.HandleFunc("DELETE /videos/{id}", auth(c.Videos.DeleteVideo))

	// Ops
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, "OK", "ok", nil)
	})
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// WithMiddleware wraps the router in the global middleware chain:
// CORS, then request metrics, then request logging.
func WithMiddleware(next http.Handler, logger *slog.Logger, metrics *middleware.Metrics, allowedOrigins []string) http.Handler {
	h := middleware.LoggingMiddleware(logger, next)
	if metrics != nil {
		h = metrics.Middleware(h)
	}
	return middleware.CORS(allowedOrigins, h)
}
