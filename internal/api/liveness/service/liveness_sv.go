package livenessService

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"DocuCapture/internal/api/liveness"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/response"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CreateSession obtains a fresh liveness session token and caches it.
func (s *livenessService) CreateSession(ctx context.Context) (entity.LivenessSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/liveness/sessions", bytes.NewReader(nil))
	if err != nil {
		return entity.LivenessSession{}, err
	}

	var body liveness.CreateSessionResponse
	if err := s.do(req, &body); err != nil {
		return entity.LivenessSession{}, err
	}

	session := entity.LivenessSession{
		Token:     body.Token,
		ExpiresAt: tokenExpiry(body.Token),
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	s.log.Debug("Liveness session created")

	return session, nil
}

// GetResult fetches the outcome of the current session. An expired cached
// token is refreshed up front; a session-classified rejection clears the
// cache and retries once with a fresh session before giving up.
func (s *livenessService) GetResult(ctx context.Context) (entity.LivenessResult, error) {
	session, err := s.ensureSession(ctx)
	if err != nil {
		return entity.LivenessResult{}, err
	}

	result, err := s.fetchResult(ctx, session.Token)
	if err == nil {
		return result, nil
	}

	if response.KindOf(err) != response.KindSession {
		return entity.LivenessResult{}, err
	}

	s.log.Warn("Liveness session rejected, refreshing and retrying")

	s.mu.Lock()
	s.session = entity.LivenessSession{}
	s.mu.Unlock()

	session, err = s.CreateSession(ctx)
	if err != nil {
		return entity.LivenessResult{}, err
	}

	return s.fetchResult(ctx, session.Token)
}

func (s *livenessService) ensureSession(ctx context.Context) (entity.LivenessSession, error) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if !session.Expired(time.Now()) {
		return session, nil
	}

	return s.CreateSession(ctx)
}

func (s *livenessService) fetchResult(ctx context.Context, token string) (entity.LivenessResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/liveness/sessions/"+token, nil)
	if err != nil {
		return entity.LivenessResult{}, err
	}

	var body liveness.ResultResponse
	if err := s.do(req, &body); err != nil {
		return entity.LivenessResult{}, err
	}

	return entity.LivenessResult{
		IsLive:         body.IsLive,
		RedirectURL:    body.RedirectURL,
		RemainingTries: body.RemainingTries,
	}, nil
}

func (s *livenessService) do(req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return response.NewError(0, fmt.Sprintf("liveness request failed: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return response.NewError(0, fmt.Sprintf("liveness response read failed: %v", err))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errBody liveness.ErrorResponse
		message := fmt.Sprintf("liveness request rejected with status %d", resp.StatusCode)
		if err := json.Unmarshal(raw, &errBody); err == nil {
			if errBody.Message != "" {
				message = errBody.Message
			} else if errBody.Error != "" {
				message = errBody.Error
			}
		}
		return response.NewErrorWithRedirect(resp.StatusCode, message, errBody.RedirectURL)
	}

	return json.Unmarshal(raw, out)
}

// tokenExpiry reads the exp claim without verifying the signature; the
// token is opaque to the SDK and only inspected to refresh proactively.
func tokenExpiry(token string) time.Time {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}

	return exp.Time
}
