package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"airtech/pkg/ai"
	"airtech/pkg/domain"
	"airtech/pkg/leads"
	"airtech/pkg/storage"
	"airtech/pkg/store"
)

// Config holds runtime configuration for the core application.
// Store, Sessions, Generator and Archive may be injected directly; when
// nil they are built from the connection settings.
type Config struct {
	DatabaseURL     string
	RedisAddr       string
	RedisPassword   string
	SessionTTL      time.Duration
	SessionStrategy string
	JWTSecret       string

	GeminiAPIKey    string
	GenerationModel string

	CollectPartialResults bool
	MaxConcurrentSearches int

	Store     store.Store
	Sessions  store.SessionStore
	Generator ai.GroundedGenerator
	Archive   storage.ReportArchive
}

// App wires storage, sessions and the lead search pipeline together.
type App struct {
	store        store.Store
	sessions     store.SessionStore
	orchestrator *leads.Orchestrator
	archive      storage.ReportArchive
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		strategy := strings.ToLower(strings.TrimSpace(cfg.SessionStrategy))
		switch strategy {
		case "", "redis":
			if strings.TrimSpace(cfg.RedisAddr) == "" {
				return nil, fmt.Errorf("redisAddr is required for the redis session strategy")
			}
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		case "jwt":
			jwtStore, err := store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
			if err != nil {
				return nil, fmt.Errorf("init jwt session store: %w", err)
			}
			sessionStore = jwtStore
		default:
			return nil, fmt.Errorf("unknown session strategy: %s", strategy)
		}
	}

	generator := cfg.Generator
	if generator == nil {
		gemini, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		model := cfg.GenerationModel
		if model == "" {
			model = "gemini-2.5-flash"
		}
		generator = ai.NewGeminiGenerator(gemini, model)
	}

	orchestrator := leads.NewOrchestrator(leads.NewClient(generator), leads.Options{
		CollectPartial: cfg.CollectPartialResults,
		MaxConcurrent:  cfg.MaxConcurrentSearches,
	})

	return &App{
		store:        dataStore,
		sessions:     sessionStore,
		orchestrator: orchestrator,
		archive:      cfg.Archive,
	}, nil
}

// SignUp registers a new account and starts a session for it. The
// returned email is the normalized form the account is keyed by.
func (a *App) SignUp(email, password string) (string, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", "", ErrEmailAndPasswordRequired
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return "", "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return "", "", ErrEmailAlreadyExists
	}
	user := domain.User{
		Email:     email,
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveUser(user); err != nil {
		return "", "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(email)
	if err != nil {
		return "", "", err
	}
	return token, email, nil
}

// Login validates credentials and starts a session. Unknown email and
// wrong password are indistinguishable to the caller.
func (a *App) Login(email, password string) (string, string, error) {
	email = normalizeEmail(email)
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return "", "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || user.Password != password {
		return "", "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(email)
	if err != nil {
		return "", "", err
	}
	return token, email, nil
}

// Logout clears the session marker.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// EmailFromToken resolves a session token to the logged-in email. A
// request carrying a valid token is how a session resumes; downstream
// code cannot tell it apart from a fresh login.
func (a *App) EmailFromToken(token string) (string, bool) {
	email, ok, err := a.sessions.GetEmailByToken(token)
	if err != nil || !ok {
		return "", false
	}
	return email, true
}

// ListProfiles returns the user's saved profiles in insertion order.
func (a *App) ListProfiles(email string) ([]domain.SavedProfile, error) {
	return a.store.ListProfiles(email)
}

// SaveProfile validates and appends a named profile for the user. A
// failed durable write is logged but does not fail the call; the created
// profile is still returned so the session keeps working.
func (a *App) SaveProfile(email, name string, profile domain.CompanyProfile) (domain.SavedProfile, error) {
	if strings.TrimSpace(name) == "" {
		return domain.SavedProfile{}, ErrProfileNameRequired
	}
	if profile.EmailApproach == domain.ApproachCustom && strings.TrimSpace(profile.CustomEmailPrompt) == "" {
		return domain.SavedProfile{}, ErrCustomPromptRequired
	}
	saved := domain.SavedProfile{
		ID:      time.Now().UTC().Format(time.RFC3339Nano),
		Name:    name,
		Profile: profile,
	}
	if err := a.store.AppendProfile(email, saved); err != nil {
		slog.Error("persist profile", "email", email, "err", err)
	}
	return saved, nil
}

// SearchLeads runs one concurrent lead search per selected profile.
// Selection follows the order of the user's saved profile list; ids that
// match nothing are ignored. An empty effective selection is a
// validation error.
func (a *App) SearchLeads(ctx context.Context, email string, profileIDs []string) (leads.Result, error) {
	if len(profileIDs) == 0 {
		return leads.Result{}, ErrNoProfilesSelected
	}
	saved, err := a.store.ListProfiles(email)
	if err != nil {
		return leads.Result{}, fmt.Errorf("load profiles: %w", err)
	}
	selected := make(map[string]bool, len(profileIDs))
	for _, id := range profileIDs {
		selected[id] = true
	}
	var toSearch []domain.SavedProfile
	for _, p := range saved {
		if selected[p.ID] {
			toSearch = append(toSearch, p)
		}
	}
	if len(toSearch) == 0 {
		return leads.Result{}, ErrNoProfilesSelected
	}
	return a.orchestrator.Run(ctx, toSearch)
}

// reportLinkTTL bounds how long an archived report stays downloadable
// through its pre-signed link.
const reportLinkTTL = 24 * time.Hour

// ExportLeads renders a CSV artifact from leads and, when an archive is
// configured, stores a copy and returns its key plus a pre-signed GET
// link. Archive failures are logged only; the caller still gets the
// CSV bytes.
func (a *App) ExportLeads(ctx context.Context, email string, list []domain.Lead) ([]byte, string, string) {
	data := leads.ExportCSV(list)
	if a.archive == nil {
		return data, "", ""
	}
	key := fmt.Sprintf("reports/%s/%s-%s.csv", email, time.Now().UTC().Format("20060102T150405Z"), uuid.NewString())
	if err := a.archive.Put(ctx, key, data, "text/csv; charset=utf-8"); err != nil {
		slog.Error("archive report", "email", email, "err", err)
		return data, "", ""
	}
	link, err := a.archive.PresignGet(ctx, key, reportLinkTTL)
	if err != nil {
		slog.Error("presign report", "email", email, "key", key, "err", err)
		return data, key, ""
	}
	return data, key, link
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
