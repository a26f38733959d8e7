package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
	"github.com/pcp-logistica/tracking-portal/internal/core/ports"
)

// UserHandler serves user management and the profile form.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type userRequest struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password"`
	Role         string   `json:"role" validate:"omitempty,oneof=admin user Admin User"`
	Status       string   `json:"status" validate:"omitempty,oneof=ativo inativo"`
	Cargo        string   `json:"cargo"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	Birthday     string   `json:"birthday"`
	ProfileImage string   `json:"profileImage"`
	AllowedViews []string `json:"allowedViews"`
}

type profileRequest struct {
	Name         string `json:"name"`
	Password     string `json:"password"`
	Cargo        string `json:"cargo"`
	Bio          string `json:"bio"`
	Location     string `json:"location"`
	Birthday     string `json:"birthday"`
	ProfileImage string `json:"profileImage"`
}

type userListResponse struct {
	Users []domain.User `json:"users"`
}

func (r userRequest) toInput(id, actor string) (ports.SaveUserInput, error) {
	views := domain.ViewSet{}
	for _, raw := range r.AllowedViews {
		v, ok := domain.ParseView(raw)
		if !ok {
			return ports.SaveUserInput{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown view %q", raw))
		}
		views = views.Add(v)
	}
	return ports.SaveUserInput{
		ID:           id,
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		Role:         r.Role,
		Status:       r.Status,
		Cargo:        r.Cargo,
		Bio:          r.Bio,
		Location:     r.Location,
		Birthday:     r.Birthday,
		ProfileImage: r.ProfileImage,
		AllowedViews: views,
		Actor:        actor,
	}, nil
}

// List handles GET /v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Name or e-mail search"
// @Success      200  {object}  userListResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users := h.service.List(c.Request().Context(), c.QueryParam("q"))
	if users == nil {
		users = []domain.User{}
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users})
}

// Create handles POST /v1/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      userRequest  true  "User form"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	return h.save(c, "", http.StatusCreated)
}

// Update handles PUT /v1/users/:id. An empty password keeps the stored one.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "User ID"
// @Param        body  body      userRequest  true  "User form"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  map[string]string
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	return h.save(c, c.Param("id"), http.StatusOK)
}

func (h *UserHandler) save(c echo.Context, id string, status int) error {
	current, err := ctxUser(c)
	if err != nil {
		return err
	}
	var req userRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.toInput(id, current.Email)
	if err != nil {
		return err
	}

	user, err := h.service.Save(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(status, userResponse{User: user})
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id  path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	current, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), *current); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateProfile handles PUT /v1/profile.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Profile form"
// @Success      200   {object}  userResponse
// @Failure      404   {object}  map[string]string
// @Router       /v1/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	sid, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), sid, ports.SaveUserInput{
		Name:         req.Name,
		Password:     req.Password,
		Cargo:        req.Cargo,
		Bio:          req.Bio,
		Location:     req.Location,
		Birthday:     req.Birthday,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}
