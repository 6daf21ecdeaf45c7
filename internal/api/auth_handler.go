package api

import (
	"aloop3/flow/internal/domain"
	"aloop3/flow/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     domain.Role `json:"role" binding:"required,oneof=coach athlete"`
}

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name"`
	Email                string                  `json:"email"`
	Role                 domain.Role             `json:"role"`
	CreatedAt            time.Time               `json:"createdAt"`
	WeightUnitPreference domain.UnitPreference   `json:"weightUnitPreference,omitempty"`
	CustomExercises      []domain.CustomExercise `json:"customExercises,omitempty"`
	AthleteIDs           []string                `json:"athleteIds,omitempty"`
	CoachID              *string                 `json:"coachId,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type WeightPreferenceRequest struct {
	WeightUnitPreference string `json:"weightUnitPreference" binding:"required"`
}

type LinkAthleteRequest struct {
	AthleteEmail string `json:"athleteEmail" binding:"required,email"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user (Coach or Athlete)
// @Description Creates a new user account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// Me godoc
// @Summary Get the current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "User not found"
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateWeightPreference godoc
// @Summary Set the weight unit preference
// @Description Accepts kg, lb or auto, case-insensitively.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param preference body WeightPreferenceRequest true "Preference"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Unknown preference"
// @Router /me/preferences [put]
func (h *AuthHandler) UpdateWeightPreference(c *gin.Context) {
	userID, ok := requesterID(c)
	if !ok {
		return
	}
	var req WeightPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	user, err := h.authService.UpdateWeightPreference(c.Request.Context(), userID, req.WeightUnitPreference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// LinkAthlete godoc
// @Summary Add an athlete to the coach's roster
// @Tags Coach
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LinkAthleteRequest true "Athlete email"
// @Success 200 {object} UserResponse "The linked athlete"
// @Failure 403 {object} gin.H "Not a coach, or target is not an athlete"
// @Failure 404 {object} gin.H "Athlete not found"
// @Router /coach/athletes [post]
func (h *AuthHandler) LinkAthlete(c *gin.Context) {
	coachID, ok := requesterID(c)
	if !ok {
		return
	}
	var req LinkAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	athlete, err := h.authService.LinkAthlete(c.Request.Context(), coachID, req.AthleteEmail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(athlete))
}

// ListAthletes godoc
// @Summary List the coach's athletes
// @Tags Coach
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Router /coach/athletes [get]
func (h *AuthHandler) ListAthletes(c *gin.Context) {
	coachID, ok := requesterID(c)
	if !ok {
		return
	}
	athletes, err := h.authService.ListAthletes(c.Request.Context(), coachID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]UserResponse, len(athletes))
	for i := range athletes {
		resp[i] = MapUserToResponse(&athletes[i])
	}
	c.JSON(http.StatusOK, resp)
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:                   user.ID,
		Name:                 user.Name,
		Email:                user.Email,
		Role:                 user.Role,
		CreatedAt:            user.CreatedAt,
		WeightUnitPreference: user.WeightUnitPreference,
		CustomExercises:      user.CustomExercises,
		AthleteIDs:           user.AthleteIDs,
		CoachID:              user.CoachID,
	}
}
