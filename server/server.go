package server

import (
	"fmt"
	"log/slog"

	"chatline/contract"
	"chatline/internal"
	"chatline/runtime"
	"chatline/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server ties the REST boundary and the websocket gateway to the
// services and the realtime tables.
type Server struct {
	app *fiber.App
	cfg internal.Config
	log *slog.Logger

	registry contract.IRegistry
	rooms    contract.IRooms
	presence *runtime.Presence
	typing   *runtime.Typing

	auth     services.IAuthService
	users    services.IUserService
	chats    services.IChatService
	messages services.IMessageService
}

func New(
	cfg internal.Config,
	log *slog.Logger,
	registry contract.IRegistry,
	rooms contract.IRooms,
	presence *runtime.Presence,
	typing *runtime.Typing,
	auth services.IAuthService,
	users services.IUserService,
	chats services.IChatService,
	messages services.IMessageService,
) *Server {
	s := &Server{
		cfg:      cfg,
		log:      log,
		registry: registry,
		rooms:    rooms,
		presence: presence,
		typing:   typing,
		auth:     auth,
		users:    users,
		chats:    chats,
		messages: messages,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "chatline",
		DisableStartupMessage: true,
	})
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: s.cfg.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api")
	api.Post("/auth/register", s.handleRegister)
	api.Post("/auth/login", s.handleLogin)

	api.Get("/users", protect, s.handleSearchUsers)

	api.Post("/chat", protect, s.handleAccessChat)
	api.Get("/chat", protect, s.handleFetchChats)

	api.Post("/message", protect, s.handleSendMessage)
	api.Get("/message/:chatId", protect, s.handleHistory)

	// The websocket gateway. The upgrade gate rejects plain HTTP.
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws", websocket.New(s.handleWebSocket))
}

// Listen blocks serving requests until Shutdown is called.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.log.Info("Server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and closes listeners.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber instance for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}
