package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wasp-platform/user-service/internal/api/middleware"
	"github.com/wasp-platform/user-service/internal/core/domain"
	"github.com/wasp-platform/user-service/internal/core/ports"
)

// UserHandler handles HTTP requests for the identity operations.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /v1/user.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        user-id  header    string  true  "Acting user id"
// @Success      200      {array}   userResponse
// @Failure      401      {object}  errorResponse
// @Router       /user [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context(), middleware.ActingUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserListResponse(users))
}

// Create handles POST /v1/user. The response carries the generated plaintext
// password; this is the only time it is ever surfaced.
//
// @Summary      Create user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user-id  header    string             true  "Acting user id"
// @Param        body     body      createUserRequest  true  "New user"
// @Success      201      {object}  userWithPasswordResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /user [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := h.service.CreateUser(c.Request().Context(), middleware.ActingUserID(c), ports.CreateUserInput{
		Name: req.Name,
		Role: domain.Role(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, userWithPasswordResponse{
		userResponse: toUserResponse(created.User),
		Password:     created.Password,
	})
}

// GetCurrent handles GET /v1/user/current.
//
// @Summary      Get current user
// @Tags         users
// @Produce      json
// @Param        user-id  header    string  true  "Acting user id"
// @Success      200      {object}  userResponse
// @Failure      401      {object}  errorResponse
// @Router       /user/current [get]
func (h *UserHandler) GetCurrent(c echo.Context) error {
	user, err := h.service.GetCurrentUser(c.Request().Context(), middleware.ActingUserID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// Get handles GET /v1/user/:id.
//
// @Summary      Get user by id
// @Tags         users
// @Produce      json
// @Param        user-id  header    string  true  "Acting user id"
// @Param        id       path      string  true  "Target user id"
// @Success      200      {object}  userResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /user/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(c.Request().Context(), middleware.ActingUserID(c), targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// Patch handles PATCH /v1/user/:id.
//
// @Summary      Update user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user-id  header    string            true  "Acting user id"
// @Param        id       path      string            true  "Target user id"
// @Param        body     body      patchUserRequest  true  "Fields to update"
// @Success      200      {object}  userResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Router       /user/{id} [patch]
func (h *UserHandler) Patch(c echo.Context) error {
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	var req patchUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var role *domain.Role
	if req.Role != nil {
		r := domain.Role(*req.Role)
		role = &r
	}

	user, err := h.service.UpdateUser(c.Request().Context(), middleware.ActingUserID(c), targetID, ports.UpdateUserInput{
		Name: req.Name,
		Role: role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// PutCurrentPassword handles PUT /v1/user/current/password. The supplied
// password is validated against the credential policy and never echoed back.
//
// @Summary      Update current user password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user-id  header    string              true  "Acting user id"
// @Param        body     body      putPasswordRequest  true  "New password"
// @Success      200      {object}  userResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Router       /user/current/password [put]
func (h *UserHandler) PutCurrentPassword(c echo.Context) error {
	var req putPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.SetOwnPassword(c.Request().Context(), middleware.ActingUserID(c), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(*user))
}

// ResetPassword handles PUT /v1/user/:id/password. A fresh password is
// generated and returned in plaintext exactly once.
//
// @Summary      Reset user password
// @Tags         users
// @Produce      json
// @Param        user-id  header    string  true  "Acting user id"
// @Param        id       path      string  true  "Target user id"
// @Success      200      {object}  userWithPasswordResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /user/{id}/password [put]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	targetID, err := targetUserID(c)
	if err != nil {
		return err
	}

	created, err := h.service.ResetPassword(c.Request().Context(), middleware.ActingUserID(c), targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userWithPasswordResponse{
		userResponse: toUserResponse(created.User),
		Password:     created.Password,
	})
}

// Login handles POST /v1/login.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      201   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Login(c.Request().Context(), req.Name, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, loginResponse{Token: result.Token, Expiry: result.Expiry})
}

// targetUserID validates the :id path parameter. A malformed target id is an
// input error, unlike a malformed acting id which fails closed as 401.
func targetUserID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "id must be a valid UUID")
	}
	return id, nil
}
