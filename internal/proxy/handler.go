// Package proxy serves the generation endpoint: identity, quota, upstream call,
// usage tracking and quota reporting, strictly in that order.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/weddingseo/contentproxy/internal/api"
	"github.com/weddingseo/contentproxy/internal/events"
	"github.com/weddingseo/contentproxy/internal/identity"
	"github.com/weddingseo/contentproxy/internal/llm"
	mw "github.com/weddingseo/contentproxy/internal/middleware"
	"github.com/weddingseo/contentproxy/internal/operation"
	"github.com/weddingseo/contentproxy/internal/quota"
)

// maxBodyBytes bounds the request body; outlines and paragraphs are far smaller.
const maxBodyBytes = 1 << 20

const defaultAccountingTimeout = 5 * time.Second

type QuotaChecker interface {
	Check(ctx context.Context, userID string, op operation.Type) quota.Decision
}

type UsageRecorder interface {
	Record(ctx context.Context, userID string, op operation.Type)
}

type QuotaReporter interface {
	Snapshot(ctx context.Context, userID string, op operation.Type) *quota.Snapshot
}

type Generator interface {
	Generate(ctx context.Context, op operation.Type, prompt string) (*llm.Result, error)
}

// Deps are the collaborators of a Handler. Events may be nil.
// AccountingTimeout bounds tracking, publishing and the snapshot after dispatch.
type Deps struct {
	Identity identity.Validator
	Limiter  QuotaChecker
	Tracker  UsageRecorder
	Reporter QuotaReporter
	LLM      Generator
	Events   events.Publisher
	Profiles quota.Profiles
	Now      quota.Clock

	AccountingTimeout time.Duration
}

type Handler struct {
	deps     Deps
	validate *validator.Validate
}

func NewHandler(deps Deps) *Handler {
	if deps.Events == nil {
		deps.Events = events.NoopPublisher{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.AccountingTimeout <= 0 {
		deps.AccountingTimeout = defaultAccountingTimeout
	}
	return &Handler{
		deps:     deps,
		validate: validator.New(),
	}
}

type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
	Type   string `json:"type"`
}

// GenerateResponse echoes the resolved operation type: a missing or unknown
// type comes back as "general", the type that was counted.
type GenerateResponse struct {
	Content string          `json:"content"`
	Type    operation.Type  `json:"type"`
	Usage   json.RawMessage `json:"usage"`
	Quota   *quota.Snapshot `json:"quota"`
}

type QuotaResponse struct {
	Type  operation.Type  `json:"type"`
	Quota *quota.Snapshot `json:"quota"`
}

// Generate handles POST /api/claude.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		api.HandleError(w, decodeError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.NewInvalidRequestError(msgPromptRequired))
		return
	}

	userID, appErr := h.authenticate(r)
	if appErr != nil {
		api.HandleError(w, appErr)
		return
	}

	op, known := operation.Parse(req.Type)
	if !known && req.Type != "" {
		slog.Debug("unknown operation type, using general", "type", req.Type, "user_id", userID)
	}

	ctx := r.Context()
	if d := h.deps.Limiter.Check(ctx, userID, op); !d.Allowed {
		h.deny(ctx, w, userID, op, d)
		return
	}

	res, err := h.deps.LLM.Generate(ctx, op, req.Prompt)
	if err != nil {
		slog.Error("generation failed", "user_id", userID, "type", op, "error", err)
		api.HandleError(w, upstreamError(err))
		return
	}

	content := res.Text
	if op == operation.TitleOptimization {
		content = NormalizeTitle(content)
	}

	// Accounting runs even if the client has gone away, but never longer than the timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.deps.AccountingTimeout)
	defer cancel()

	h.deps.Tracker.Record(ctx, userID, op)

	event := events.NewUsageEvent(userID, op, h.deps.Profiles.For(op).Credits, h.deps.Now())
	if err := h.deps.Events.PublishUsage(ctx, event); err != nil {
		slog.Warn("publishing usage event", "user_id", userID, "type", op, "error", err)
	}

	api.JSON(w, http.StatusOK, GenerateResponse{
		Content: content,
		Type:    op,
		Usage:   res.Usage,
		Quota:   h.deps.Reporter.Snapshot(ctx, userID, op),
	})
}

// Quota handles GET /api/quota. It reports without consuming quota.
func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	userID, appErr := h.authenticate(r)
	if appErr != nil {
		api.HandleError(w, appErr)
		return
	}

	op, _ := operation.Parse(r.URL.Query().Get("type"))
	api.JSON(w, http.StatusOK, QuotaResponse{
		Type:  op,
		Quota: h.deps.Reporter.Snapshot(r.Context(), userID, op),
	})
}

func (h *Handler) authenticate(r *http.Request) (string, *api.AppError) {
	userID := r.Header.Get(mw.HeaderUserID)
	if userID == "" {
		return "", api.ErrNoUserID
	}
	if !h.deps.Identity.Validate(userID, r.Header.Get(mw.HeaderUserToken)) {
		slog.Warn("rejected credential", "user_id", userID)
		return "", api.ErrInvalidToken
	}
	return userID, nil
}

func (h *Handler) deny(ctx context.Context, w http.ResponseWriter, userID string, op operation.Type, d quota.Decision) {
	now := h.deps.Now()
	slog.Info("quota exceeded", "user_id", userID, "type", op, "kind", d.Kind, "limit", d.Limit)

	if err := h.deps.Events.PublishDenial(ctx, events.NewDenialEvent(userID, op, d, now)); err != nil {
		slog.Warn("publishing denial event", "user_id", userID, "type", op, "error", err)
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(d.ResetAt, now)))
	api.HandleError(w, api.NewRateLimitError(d.Message).
		With("limits", d.Limits()).
		With("resetTime", d.ResetAt.UTC().Format(time.RFC3339)))
}

const msgPromptRequired = "Prompt is required and must be a string"

// decodeError names the part of the body that could not be read. An empty body
// is a missing prompt.
func decodeError(err error) *api.AppError {
	var (
		tooLarge  *http.MaxBytesError
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.Is(err, io.EOF):
		return api.NewInvalidRequestError(msgPromptRequired)
	case errors.As(err, &tooLarge):
		return api.NewInvalidRequestError(fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	case errors.As(err, &typeErr) && typeErr.Field == "type":
		return api.NewInvalidRequestError("Type must be a string")
	case errors.As(err, &typeErr) && typeErr.Field == "prompt":
		return api.NewInvalidRequestError(msgPromptRequired)
	case errors.As(err, &typeErr):
		return api.NewInvalidRequestError("Request body must be a JSON object")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return api.NewInvalidRequestError("Request body is not valid JSON")
	default:
		return api.NewInvalidRequestError(msgPromptRequired)
	}
}

func retryAfterSeconds(reset, now time.Time) int {
	secs := int(math.Ceil(reset.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// upstreamError maps a Generator failure to the public error taxonomy. Upstream
// throttling is reported as a 500 so it is never confused with this service's quota.
func upstreamError(err error) *api.AppError {
	var se *llm.StatusError
	switch {
	case errors.Is(err, llm.ErrAPIKeyMissing):
		return api.ErrAPIKeyMissing
	case errors.Is(err, llm.ErrInvalidResponse):
		return api.ErrInvalidAPIResp
	case errors.As(err, &se):
		switch se.StatusCode {
		case http.StatusUnauthorized:
			return api.ErrAPIUnauthorized
		case http.StatusTooManyRequests:
			return api.ErrAPIRateLimit
		default:
			return api.NewAPIError(fmt.Sprintf("Claude API Fehler: %d", se.StatusCode))
		}
	default:
		return api.NewAPIError("Claude API nicht erreichbar. Versuche es später erneut.")
	}
}
