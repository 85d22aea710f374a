package uploadService

import (
	"net/http"
	"time"

	"DocuCapture/internal/api/upload"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/s3"
	"DocuCapture/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IUploadService interface {
	UploadDocument(ctx context.Context, side entity.DocumentSide, filePath string, target *upload.Target) (string, error)
}

type uploadService struct {
	log        *logrus.Logger
	httpClient *http.Client
	validator  *validator.Validate
	s3Client   s3.ItfS3
	utils      utils.IUtils
}

// New builds the upload collaborator. The S3 client is optional; without it
// only presigned targets are usable.
func New(
	logger *logrus.Logger,
	validator *validator.Validate,
	s3Client s3.ItfS3,
	u utils.IUtils,
) IUploadService {
	return &uploadService{
		log:        logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		validator:  validator,
		s3Client:   s3Client,
		utils:      u,
	}
}
