package httpapi

import (
	"net/http"

	"github.com/fplstats/minileague/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)

	mux.HandleFunc("GET /v1/phases", handler.GetPhases)
	mux.HandleFunc("GET /v1/gameweeks/{gw}/fixtures", handler.GetGameweekFixtures)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/progression", handler.GetLeagueProgression)
	mux.HandleFunc("GET /v1/teams/search", handler.SearchTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/teams/{teamID}/leagues", handler.GetTeamLeagues)
	mux.HandleFunc("GET /v1/teams/{teamID}/history", handler.GetTeamHistory)
	mux.HandleFunc("GET /v1/teams/{teamID}/gameweeks/{gw}", handler.GetGameweekSnapshot)
	mux.HandleFunc("GET /v1/teams/{teamID}/gameweeks/{gw}/squad", handler.GetGameweekSquad)
	mux.HandleFunc("POST /v1/crests/batch", handler.GenerateCrests)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
