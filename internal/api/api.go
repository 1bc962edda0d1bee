package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/susu3304/pokerclub/internal/club"
	"github.com/susu3304/pokerclub/internal/config"
)

type API struct {
	router      *mux.Router
	svc         *club.Service
	users       *club.Directory
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
	log         zerolog.Logger

	// fetchUser resolves an OAuth access token to a Discord user.
	fetchUser func(ctx context.Context, token *oauth2.Token) (*DiscordUser, error)
}

func New(cfg *config.Config, svc *club.Service, users *club.Directory, log zerolog.Logger) *API {
	api := &API{
		router:    mux.NewRouter(),
		svc:       svc,
		users:     users,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		log:       log.With().Str("component", "api").Logger(),
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}
	api.fetchUser = api.getDiscordUser

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.router.Use(a.requestLogger, a.actorMiddleware)

	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")
	a.router.HandleFunc("/api/me", a.handleMe).Methods("GET")

	// Read model, open to every role
	a.router.HandleFunc("/api/snapshot", a.handleSnapshot).Methods("GET")
	a.router.HandleFunc("/api/stream", a.handleStream).Methods("GET")
	a.router.HandleFunc("/api/players", a.handleListPlayers).Methods("GET")
	a.router.HandleFunc("/api/players/{id}/in-use", a.handlePlayerInUse).Methods("GET")
	a.router.HandleFunc("/api/config/defaults", a.handleGetDefaults).Methods("GET")
	a.router.HandleFunc("/api/game", a.handleGetGame).Methods("GET")
	a.router.HandleFunc("/api/sessions", a.handleListSessions).Methods("GET")
	a.router.HandleFunc("/api/sessions/{id}", a.handleGetSession).Methods("GET")
	a.router.HandleFunc("/api/cashier", a.handleCashier).Methods("GET")
	a.router.HandleFunc("/api/rankings/annual", a.handleAnnualRanking).Methods("GET")
	a.router.HandleFunc("/api/rankings/last-game", a.handleLastGameRanking).Methods("GET")
	a.router.HandleFunc("/api/rankings/highlights", a.handleHighlights).Methods("GET")
	a.router.HandleFunc("/api/rankings/years", a.handleRankingYears).Methods("GET")
	a.router.HandleFunc("/api/dinner", a.handleGetDinner).Methods("GET")
	a.router.HandleFunc("/api/dinners", a.handleListDinners).Methods("GET")

	// Mutations; the coordinator enforces the role
	a.router.HandleFunc("/api/players", a.handleCreatePlayer).Methods("POST")
	a.router.HandleFunc("/api/players/{id}", a.handleUpdatePlayer).Methods("PUT")
	a.router.HandleFunc("/api/players/{id}", a.handleDeletePlayer).Methods("DELETE")
	a.router.HandleFunc("/api/players/{id}/active", a.handleSetPlayerActive).Methods("PUT")
	a.router.HandleFunc("/api/config/defaults", a.handleSaveDefaults).Methods("PUT")

	a.router.HandleFunc("/api/game", a.handleStartGame).Methods("POST")
	a.router.HandleFunc("/api/game", a.handleCancelGame).Methods("DELETE")
	a.router.HandleFunc("/api/game/end", a.handleEndGame).Methods("POST")
	a.router.HandleFunc("/api/game/name", a.handleRenameGame).Methods("PUT")
	a.router.HandleFunc("/api/game/players", a.handleAddGamePlayer).Methods("POST")
	a.router.HandleFunc("/api/game/players/{id}/rebuy", a.handleAddRebuy).Methods("POST")
	a.router.HandleFunc("/api/game/players/{id}/rebuy", a.handleRemoveRebuy).Methods("DELETE")
	a.router.HandleFunc("/api/game/players/{id}/chips", a.handleSetChips).Methods("PUT")

	a.router.HandleFunc("/api/sessions", a.handleSaveHistoricSession).Methods("POST")
	a.router.HandleFunc("/api/sessions/{id}", a.handleEditSession).Methods("PUT")
	a.router.HandleFunc("/api/sessions/{id}", a.handleDeleteSession).Methods("DELETE")
	a.router.HandleFunc("/api/cashier/{player_id}/settle", a.handleSettle).Methods("POST")

	a.router.HandleFunc("/api/dinner", a.handleStartDinner).Methods("POST")
	a.router.HandleFunc("/api/dinner", a.handleCancelDinner).Methods("DELETE")
	a.router.HandleFunc("/api/dinner/finalize", a.handleFinalizeDinner).Methods("POST")
	a.router.HandleFunc("/api/dinner/name", a.handleRenameDinner).Methods("PUT")
	a.router.HandleFunc("/api/dinner/costs", a.handleSetDinnerCosts).Methods("PUT")
	a.router.HandleFunc("/api/dinner/players/{id}", a.handleSetDinnerFlags).Methods("PUT")

	a.router.HandleFunc("/api/users", a.handleListUsers).Methods("GET")
	a.router.HandleFunc("/api/users/{id}/role", a.handleSetRole).Methods("PUT")
}

// Handler is the router wrapped with CORS.
func (a *API) Handler() http.Handler {
	// Tokens travel in the Authorization header, so credentials stay off with
	// the wildcard origin.
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (a *API) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.WebBind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.config.WebBind).Msg("API server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
