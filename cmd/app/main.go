package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"DocuCapture/internal/api/upload"
	uploadService "DocuCapture/internal/api/upload/service"
	"DocuCapture/internal/camera"
	"DocuCapture/internal/config"
	"DocuCapture/internal/detection"
	"DocuCapture/internal/entity"
	"DocuCapture/pkg/log"
	"DocuCapture/pkg/s3"
	"DocuCapture/pkg/utils"
	websocketPkg "DocuCapture/pkg/websocket"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	utilsInstance := utils.New()
	channel := websocketPkg.NewChannel(cfg.DetectionURL, logger)
	cam := camera.NewTestPattern(cfg.ScreenWidth*3/4, cfg.ScreenHeight*3/4)

	service := detection.NewDetectionService(logger, channel, cam, utilsInstance, detection.Options{
		Target:            config.TargetRect(cfg.ScreenWidth, cfg.ScreenHeight),
		ScreenWidth:       cfg.ScreenWidth,
		ScreenHeight:      cfg.ScreenHeight,
		Side:              entity.DocumentFront,
		CaptureDir:        cfg.CaptureDir,
		SteadyDelay:       cfg.SteadyDelay,
		DetectionInterval: cfg.DetectionInterval,
		ImageQuality:      cfg.ImageQuality,
		ImageScale:        cfg.ImageScale,
		OwnsChannel:       true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := service.Start(ctx); err != nil {
		logger.Fatalf("Error starting capture session: %v", err)
	}

	go consumeFeedback(service)
	go consumeCaptures(ctx, cfg, service)

	logger.Info("Capture session started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down capture session...")
	service.Stop()
}

func consumeFeedback(service detection.IDetectionService) {
	logger := log.NewLogger()

	var last string
	for event := range service.Feedback() {
		if event.Message == last {
			continue
		}
		last = event.Message

		logger.WithFields(log.Fields{
			"state":     event.State.String(),
			"connected": event.Connected,
		}).Infof("Feedback: %s", event.Message)
	}
}

func consumeCaptures(ctx context.Context, cfg *config.Config, service detection.IDetectionService) {
	logger := log.NewLogger()

	var s3Client s3.ItfS3
	if os.Getenv("AWS_BUCKET_NAME") != "" {
		client, err := s3.New()
		if err != nil {
			logger.Warnf("S3 client unavailable: %v", err)
		} else {
			s3Client = client
		}
	}

	uploader := uploadService.New(logger, config.NewValidator(), s3Client, utils.New())

	for capture := range service.Captures() {
		logger.Infof("Capture produced: %s (%dx%d)", capture.Path, capture.Width, capture.Height)

		if cfg.UploadURL == "" && s3Client == nil {
			continue
		}

		target := uploadTarget(cfg)
		location, err := uploader.UploadDocument(ctx, capture.Side, capture.Path, target)
		if err != nil {
			logger.Errorf("Upload failed: %v", err)
			continue
		}
		logger.Infof("Capture uploaded to %s", location)
	}
}

func uploadTarget(cfg *config.Config) *upload.Target {
	if cfg.UploadURL == "" {
		return nil
	}
	return &upload.Target{URL: cfg.UploadURL}
}
