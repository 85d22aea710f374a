package main

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"DocuCapture/pkg/log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// mockserver stands in for the remote ML detection service during local
// development: every decodable frame gets a centered bounding box and
// passing quality checks, so a session reaches steady state and captures.
func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:     "DocuCapture Mock Detection",
		BodyLimit:   50 * 1024 * 1024,
		JSONEncoder: jsoniter.Marshal,
		JSONDecoder: jsoniter.Unmarshal,
	})

	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	document := app.Group("/api/v1/document")
	document.Use("/ws", wsMiddleware)
	document.Get("/ws", websocket.New(handleDocumentWS(logger)))

	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "8000"
	}

	logger.Infof("Mock detection service listening on :%s", port)
	if err := app.Listen(fmt.Sprintf(":%s", port)); err != nil {
		logger.Fatalf("Error starting mock server: %v", err)
	}
}

func handleDocumentWS(logger *logrus.Logger) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		logger.Info("Detection client connected")
		defer logger.Info("Detection client disconnected")

		for {
			messageType, payload, err := c.ReadMessage()
			if err != nil {
				break
			}

			if messageType != websocket.BinaryMessage {
				continue
			}

			reply := detectFrame(payload)
			if err := c.WriteJSON(reply); err != nil {
				break
			}
		}
	}
}

// detectFrame fakes a detection result: a box spanning the middle of the
// submitted frame with every quality check passing.
func detectFrame(frame []byte) map[string]interface{} {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(frame))
	if err != nil {
		return map[string]interface{}{"success": false}
	}

	w := float64(cfg.Width)
	h := float64(cfg.Height)

	return map[string]interface{}{
		"success": true,
		"checks": map[string]string{
			"brightness": "pass",
			"darkness":   "pass",
			"blur":       "pass",
			"glare":      "pass",
		},
		"bbox": []float64{w * 0.1, h * 0.2, w * 0.9, h * 0.8},
	}
}
