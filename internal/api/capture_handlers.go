package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/ramekin/ramekin-web/internal/capture"
	domainerrors "github.com/ramekin/ramekin-web/internal/errors"
	"github.com/ramekin/ramekin-web/internal/http/response"
	"github.com/ramekin/ramekin-web/internal/id"
	"github.com/ramekin/ramekin-web/internal/session"
	"github.com/ramekin/ramekin-web/internal/validation"
)

// Message sources as reported by the capture page.
const (
	sourceOpener = "opener"
	sourceOther  = "other"
)

func (s *Server) registerCaptureRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createCaptureSession",
		Method:        http.MethodPost,
		Path:          "/api/capture/sessions",
		Summary:       "Open capture session",
		Description:   "Starts a receiver for one capture page and announces readiness to its opener",
		Tags:          []string{"Capture"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCaptureSession",
		Method:      http.MethodGet,
		Path:        "/api/capture/sessions/{id}",
		Summary:     "Get capture session",
		Description: "Returns the receiver state of a capture session",
		Tags:        []string{"Capture"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID:   "postCaptureMessage",
		Method:        http.MethodPost,
		Path:          "/api/capture/sessions/{id}/messages",
		Summary:       "Relay window message",
		Description:   "Delivers a window message the capture page received to its receiver",
		Tags:          []string{"Capture"},
		DefaultStatus: http.StatusAccepted,
		Middlewares:   huma.Middlewares{s.rateLimit(s.messageRateLimiter)},
	}, s.handlePostMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "closeCapture",
		Method:      http.MethodPost,
		Path:        "/api/capture/sessions/{id}/close",
		Summary:     "Close capture UI",
		Description: "Asks the opener to remove the capture frame",
		Tags:        []string{"Capture"},
	}, s.handleRequestClose)

	huma.Register(s.api, huma.Operation{
		OperationID: "viewCapturedRecipe",
		Method:      http.MethodPost,
		Path:        "/api/capture/sessions/{id}/view",
		Summary:     "View recipe",
		Description: "Asks the opener to open the saved recipe in a new tab",
		Tags:        []string{"Capture"},
	}, s.handleViewRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCaptureSession",
		Method:        http.MethodDelete,
		Path:          "/api/capture/sessions/{id}",
		Summary:       "End capture session",
		Description:   "Stops the receiver and ends its event streams",
		Tags:          []string{"Capture"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBookmarklet",
		Method:      http.MethodGet,
		Path:        "/api/bookmarklet",
		Summary:     "Get bookmarklet",
		Description: "Returns the bookmarklet link and launch script URL for the caller's token",
		Tags:        []string{"Capture"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBookmarklet)

	// Event streams bypass huma; the response is written incrementally.
	s.router.With(RateLimitMiddleware(s.streamRateLimiter, s.logger)).
		Get("/api/capture/sessions/{id}/events", s.handleSessionEvents)
}

// === DTOs ===

// CreateSessionRequest is the request body for opening a capture session.
type CreateSessionRequest struct {
	HasOpener bool `json:"has_opener" doc:"Whether the capture page has a window.opener"`
}

// CreateSessionInput wraps the create session request for Huma.
type CreateSessionInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateSessionRequest
}

// SessionResponse describes a capture session.
type SessionResponse struct {
	ID    string        `json:"id" doc:"Session ID"`
	State capture.State `json:"state" doc:"Receiver state"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

// SessionPathInput addresses one session.
type SessionPathInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// PostMessageRequest is one window message event seen by the capture page.
type PostMessageRequest struct {
	Origin string `json:"origin" doc:"event.origin of the message"`
	Source string `json:"source" enum:"opener,other" doc:"opener if event.source was window.opener"`
	Data   any    `json:"data" doc:"event.data of the message"`
}

// PostMessageInput wraps the message request for Huma.
type PostMessageInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body PostMessageRequest
}

// AcceptedOutput acknowledges a relayed message.
type AcceptedOutput struct {
	Body struct {
		Accepted bool `json:"accepted" doc:"False if the message was not understood"`
	}
}

// ViewRecipeRequest is the request body for the view action.
type ViewRecipeRequest struct {
	URL string `json:"url" validate:"required,url" doc:"Recipe URL to open"`
}

// ViewRecipeInput wraps the view request for Huma.
type ViewRecipeInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Body ViewRecipeRequest
}

// BookmarkletInput carries the caller's credential.
type BookmarkletInput struct {
	Authorization string `header:"Authorization"`
}

// BookmarkletResponse contains the bookmarklet link.
type BookmarkletResponse struct {
	Href      string `json:"href" doc:"javascript: URL to save as a bookmark"`
	LaunchURL string `json:"launch_url" doc:"Script the bookmarklet loads"`
}

// BookmarkletOutput wraps the bookmarklet response for Huma.
type BookmarkletOutput struct {
	Body BookmarkletResponse
}

// === Handlers ===

func (s *Server) handleCreateSession(_ context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	token := bearerToken(input.Authorization)
	sess := s.openSession(token, input.Body.HasOpener)

	return &SessionOutput{Body: SessionResponse{ID: sess.id, State: sess.receiver.State()}}, nil
}

func (s *Server) handleGetSession(_ context.Context, input *SessionPathInput) (*SessionOutput, error) {
	sess, err := s.lookupSession(input.ID)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{ID: sess.id, State: sess.receiver.State()}}, nil
}

func (s *Server) handlePostMessage(_ context.Context, input *PostMessageInput) (*AcceptedOutput, error) {
	raw, err := json.Marshal(input.Body.Data)
	if err != nil {
		return nil, domainerrors.Validation("message data is not JSON")
	}
	if limit := s.cfg.Capture.MaxHTMLBytes; limit > 0 && int64(len(raw)) > limit {
		return nil, domainerrors.Validationf("message exceeds %d bytes", limit)
	}

	sess, err := s.lookupSession(input.ID)
	if err != nil {
		return nil, err
	}

	msg, ok := capture.Decode(raw)

	source := capture.Source(sourceOther)
	if input.Body.Source == sourceOpener {
		source = sess.proxy.Source()
	}
	sess.page.Inject(capture.Envelope{Origin: input.Body.Origin, Source: source, Data: msg})

	out := &AcceptedOutput{}
	out.Body.Accepted = ok
	return out, nil
}

func (s *Server) handleRequestClose(_ context.Context, input *SessionPathInput) (*SessionOutput, error) {
	sess, err := s.lookupSession(input.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.receiver.RequestClose(); err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{ID: sess.id, State: sess.receiver.State()}}, nil
}

func (s *Server) handleViewRecipe(_ context.Context, input *ViewRecipeInput) (*SessionOutput, error) {
	if err := validation.Validate(input.Body); err != nil {
		return nil, err
	}
	sess, err := s.lookupSession(input.ID)
	if err != nil {
		return nil, err
	}
	if err := sess.receiver.ViewRecipe(input.Body.URL); err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{ID: sess.id, State: sess.receiver.State()}}, nil
}

func (s *Server) handleDeleteSession(_ context.Context, input *SessionPathInput) (*struct{}, error) {
	sess, ok := s.sessions.remove(input.ID)
	if !ok {
		return nil, domainerrors.NotFoundf("capture session %s not found", input.ID)
	}
	s.closeSession(sess)
	s.logger.Info("capture session closed", "session_id", sess.id)
	return nil, nil
}

func (s *Server) handleGetBookmarklet(_ context.Context, input *BookmarkletInput) (*BookmarkletOutput, error) {
	token := bearerToken(input.Authorization)
	if token == "" {
		return nil, huma.Error401Unauthorized(capture.TextNotLoggedIn)
	}

	launch := capture.LaunchURL(s.cfg.PublicOrigin(), s.cfg.Ramekin.APIURL, token)
	return &BookmarkletOutput{Body: BookmarkletResponse{
		Href:      bookmarkletHref(launch),
		LaunchURL: launch,
	}}, nil
}

// handleSessionEvents streams relay events for one session.
// GET /api/capture/sessions/{id}/events
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	s.sseHandler.Serve(w, r, sess.id, sess.backlog)
}

// === Session lifecycle ===

// openSession builds the relay for one capture page and starts its receiver.
func (s *Server) openSession(token string, hasOpener bool) *captureSession {
	now := s.clock.Now()
	proxy, page := capture.Pipe("", s.cfg.PublicOrigin())
	sess := &captureSession{
		id:       id.MustGenerate(id.CaptureSession),
		proxy:    proxy,
		page:     page,
		created:  now,
		lastSeen: now,
	}

	var opener capture.Source
	var channel capture.Channel
	if hasOpener {
		opener = proxy.Source()
		channel = page
	}

	var jobs capture.JobAPI
	if s.jobs != nil {
		jobs = s.jobs(token)
	}

	sess.receiver = capture.NewReceiver(capture.ReceiverConfig{
		Channel:      channel,
		Opener:       opener,
		Credentials:  session.Static(token),
		Jobs:         jobs,
		Clock:        s.clock,
		PollInterval: s.cfg.Capture.PollInterval,
		Logger:       s.logger.With("session_id", sess.id),
	})

	// The receiver always targets its opener with the wildcard origin.
	proxy.Listen(func(env capture.Envelope) {
		s.sseManager.Emit(sess.queueMessage(env, capture.AnyOrigin))
	})
	sess.receiver.OnChange(func(state capture.State) {
		s.sseManager.Emit(sess.setState(state))
		s.recordProgress(sess, state)
	})

	s.sessions.put(sess)
	state := sess.receiver.Start(context.Background())
	sess.setState(state)

	s.logger.Info("capture session opened",
		"session_id", sess.id,
		"has_opener", hasOpener,
		"phase", state.Phase)
	return sess
}

func (s *Server) lookupSession(sessionID string) (*captureSession, error) {
	sess, ok := s.sessions.get(sessionID, s.clock.Now())
	if !ok {
		return nil, domainerrors.NotFoundf("capture session %s not found", sessionID)
	}
	return sess, nil
}

// bearerToken extracts the credential from an Authorization header.
func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// bookmarkletHref wraps the launch script in a javascript: link that loads
// it into the current page.
func bookmarkletHref(launchURL string) string {
	src, _ := json.Marshal(launchURL)
	return "javascript:(function(){var s=document.createElement('script');s.src=" +
		string(src) + "+'&t='+Date.now();document.body.appendChild(s);})();"
}
