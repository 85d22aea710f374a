package livenessService

import (
	"net/http"
	"sync"
	"time"

	"DocuCapture/internal/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ILivenessService interface {
	CreateSession(ctx context.Context) (entity.LivenessSession, error)
	GetResult(ctx context.Context) (entity.LivenessResult, error)
}

// livenessService wraps the cloud liveness provider's session API. One
// session token is cached and refreshed when expired or rejected.
type livenessService struct {
	log        *logrus.Logger
	httpClient *http.Client
	baseURL    string

	mu      sync.Mutex
	session entity.LivenessSession
}

func New(logger *logrus.Logger, baseURL string) ILivenessService {
	return &livenessService{
		log:        logger,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
	}
}
