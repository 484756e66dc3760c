package server

import (
	"chatline/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type accessChatRequest struct {
	UserID string `json:"userId"`
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := errors.HTTPStatus(err)
	if status == fiber.StatusInternalServerError {
		s.log.Error("Request failed", "path", c.Path(), "err", err)
		return c.Status(status).JSON(errorResponse{Error: "internal error"})
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	token, user, err := s.auth.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: string(token), User: user})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	token, user, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(authResponse{Token: string(token), User: user})
}

func (s *Server) handleSearchUsers(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	users, err := s.users.Search(c.UserContext(), claims.UserID, c.Query("search"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(users)
}

// handleAccessChat creates or fetches the direct conversation with
// another user. 201 on first contact, 200 when it already existed.
func (s *Server) handleAccessChat(c *fiber.Ctx) error {
	var req accessChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	claims := claimsFrom(c)
	view, created, err := s.chats.AccessChat(claims.UserID, req.UserID)
	if err != nil {
		return s.fail(c, err)
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(view)
}

func (s *Server) handleFetchChats(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	views, err := s.chats.FetchChats(claims.UserID)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(views)
}

func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	claims := claimsFrom(c)
	resolved, err := s.messages.Send(claims.UserID, req.ChatID, req.Content)
	if err != nil {
		return s.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resolved)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	var cursor *string
	if raw := c.Query("cursor"); raw != "" {
		cursor = lo.ToPtr(raw)
	}

	messages, next, err := s.messages.History(c.Params("chatId"), cursor)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"cursor":   next,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "healthy",
		"online_users": len(s.registry.OnlineUserIDs()),
	})
}
