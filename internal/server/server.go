// Package server exposes the transcript resolver over HTTP. Every
// response is a well-formed JSON object with a boolean success flag;
// strategy internals and panics never leak to the caller.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recovermw "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/tubetext/tubetext/internal/resolver"
)

const (
	ServiceName = "tubetext"
	Version     = "1.0.0"
)

// TranscriptResolver is what the handlers need from the resolver; the
// concrete resolver satisfies it, tests substitute their own.
type TranscriptResolver interface {
	Resolve(ctx context.Context, raw string) (*resolver.Result, error)
}

type Server struct {
	app      *fiber.App
	resolver TranscriptResolver
}

func New(res TranscriptResolver) *Server {
	s := &Server{resolver: res}

	s.app = fiber.New(fiber.Config{
		AppName:      ServiceName,
		ErrorHandler: errorHandler,
	})

	s.app.Use(recovermw.New())
	s.app.Use(requestid.New())
	// Permissive CORS: the service is called from browser-side automation
	// tools as well as servers.
	s.app.Use(cors.New())
	s.app.Use(logger.New())

	s.app.Get("/", s.handleRoot)
	s.app.Get("/health", s.handleHealth)
	s.app.Post("/extract", s.handleExtractPost)
	s.app.Get("/extract", s.handleExtractGet)

	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error {
	slog.Info("listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   ServiceName,
		"version":   Version,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type extractRequest struct {
	VideoID string `json:"video_id"`
}

func (s *Server) handleExtractPost(c *fiber.Ctx) error {
	var req extractRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidInput(c, "", "request body must be JSON with a video_id field")
	}
	if req.VideoID == "" {
		return invalidInput(c, "", "video_id is required")
	}

	return s.extract(c, req.VideoID)
}

func (s *Server) handleExtractGet(c *fiber.Ctx) error {
	videoID := c.Query("video_id")
	if videoID == "" {
		return invalidInput(c, "", "video_id query parameter is required")
	}

	return s.extract(c, videoID)
}

func (s *Server) extract(c *fiber.Ctx, raw string) error {
	result, err := s.resolver.Resolve(c.UserContext(), raw)
	if err != nil {
		var failure *resolver.Failure
		if errors.As(err, &failure) {
			return c.Status(statusFor(failure)).JSON(failure)
		}

		slog.Error("resolver returned unexpected error", slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(&resolver.Failure{
			VideoID:  raw,
			Category: resolver.CategoryExhausted,
			Message:  "internal error",
		})
	}

	return c.JSON(result)
}

func invalidInput(c *fiber.Ctx, videoID, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(&resolver.Failure{
		VideoID:  videoID,
		Category: resolver.CategoryInvalidInput,
		Message:  message,
	})
}

func statusFor(f *resolver.Failure) int {
	if f.Category == resolver.CategoryInvalidInput {
		return fiber.StatusBadRequest
	}
	if errors.Is(f, context.DeadlineExceeded) {
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusBadGateway
}

// errorHandler keeps unhandled fiber errors in the same JSON shape as
// resolver failures.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   "internal_error",
		"message": err.Error(),
	})
}
