package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
	domain "github.com/loveroseeeeeeeeee/projetogym5/domain/user"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/activity"
	"github.com/loveroseeeeeeeeee/projetogym5/modules/auth"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth     auth.AuthPort
	activity activity.Port
	env      string
}

// NewHandlers creates a new Handlers instance. activity may be nil.
func NewHandlers(authPort auth.AuthPort, activityPort activity.Port, env string) *Handlers {
	return &Handlers{
		auth:     authPort,
		activity: activityPort,
		env:      env,
	}
}

// Index describes the API and whether the caller is signed in.
func (h *Handlers) Index(c *fiber.Ctx) error {
	data := fiber.Map{
		"name":          "Nexon Fitness API",
		"authenticated": false,
	}
	if user := CurrentUser(c); user != nil {
		data["authenticated"] = true
		data["user"] = user
	}
	return c.JSON(ok("", data))
}

// Health reports service liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(ok("", fiber.Map{
		"status":      "ok",
		"environment": h.env,
		"timestamp":   time.Now().UTC(),
	}))
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(ok("user registered successfully", result))
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req auth.LoginInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(ok("login successful", result))
}

// Profile returns the current user's profile.
func (h *Handlers) Profile(c *fiber.Ctx) error {
	user, err := h.auth.GetProfile(c.UserContext(), CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(ok("", fiber.Map{"user": user}))
}

// UpdateProfile applies an allow-listed patch to the current user.
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	var patch domain.ProfilePatch
	if err := parseBody(c, &patch); err != nil {
		return err
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), CurrentUser(c).ID, patch)
	if err != nil {
		return err
	}
	return c.JSON(ok("profile updated successfully", fiber.Map{"user": user}))
}

// ChangePassword changes the current user's password.
func (h *Handlers) ChangePassword(c *fiber.Ctx) error {
	var req auth.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), CurrentUser(c).ID, req); err != nil {
		return err
	}
	return c.JSON(ok("password changed successfully", fiber.Map{}))
}

// Logout acknowledges the logout. The client discards its token.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(ok("logged out successfully", fiber.Map{}))
}

// RecordWorkout logs a completed workout for the current user.
func (h *Handlers) RecordWorkout(c *fiber.Ctx) error {
	var req WorkoutRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	stats, err := h.auth.RecordWorkout(c.UserContext(), CurrentUser(c).ID, req.Minutes)
	if err != nil {
		return err
	}
	return c.JSON(ok("workout recorded", fiber.Map{"stats": stats}))
}

// ListUsers returns a page of users for administrators.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	page, err := h.auth.ListUsers(c.UserContext(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return err
	}
	return c.JSON(ok("", page))
}

// Activity returns recent account events for administrators.
func (h *Handlers) Activity(c *fiber.Ctx) error {
	if h.activity == nil {
		return apperr.NotFound("activity log not available")
	}

	resp, err := h.activity.Recent(c.UserContext(), activity.RecentRequest{
		Limit:  c.QueryInt("limit", 50),
		UserID: c.Query("userId"),
	})
	if err != nil {
		return apperr.Internal("failed to read activity", err)
	}
	return c.JSON(ok("", resp))
}

// NotFound handles unknown routes.
func (h *Handlers) NotFound(c *fiber.Ctx) error {
	return apperr.NotFound("route not found")
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("invalid request body", nil)
	}
	return nil
}
