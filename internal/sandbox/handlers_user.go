package sandbox

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/julianstephens/mealplanner/internal/errors"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/storage"
	"github.com/julianstephens/mealplanner/internal/validation"
)

const (
	msgInvalidBody        = "invalid JSON body"
	msgInvalidCredentials = "Invalid email or password."
	msgResetFailed        = "Email, secret question or answer did not match."
	msgInternal           = "internal server error"
)

// normalizeAnswer makes secret answers case and space insensitive.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func userMessage(err error) string {
	return apperrors.UserMessage(err, err.Error())
}

func hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func matches(hashed, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(secret)) == nil
}

func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := validation.ValidateLogin(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}

	u, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil || !matches(u.PasswordHash, req.Password) {
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Login lookup failed", "error", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
		return
	}

	token, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		logger.Error("Failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, models.LoginResponse{Token: token, Username: u.Username})
}

func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := validation.ValidateRegister(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}

	passwordHash, err := hash(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	answerHash, err := hash(normalizeAnswer(req.Answer))
	if err != nil {
		logger.Error("Failed to hash answer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	u, err := s.store.CreateUser(c.Request.Context(), storage.User{
		Username:       strings.TrimSpace(req.Username),
		Email:          req.Email,
		PasswordHash:   passwordHash,
		FamilySize:     req.FamilySize,
		SecretQuestion: req.SecretQuestion,
		AnswerHash:     answerHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists."})
			return
		}
		logger.Error("Failed to register user", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	logger.Info("Registered sandbox user", "id", u.ID, "username", u.Username)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// forgotPassword always answers 200 so the client can show the message
// from the body.
func (s *Server) forgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if err := validation.ValidateForgotPassword(req); err != nil {
		c.JSON(http.StatusOK, models.ForgotPasswordResponse{Success: false, Message: userMessage(err)})
		return
	}

	ctx := c.Request.Context()
	u, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil || u.SecretQuestion != req.SecretQuestion || !matches(u.AnswerHash, normalizeAnswer(req.Answer)) {
		c.JSON(http.StatusOK, models.ForgotPasswordResponse{Success: false, Message: msgResetFailed})
		return
	}

	passwordHash, err := hash(req.NewPassword)
	if err == nil {
		err = s.store.UpdatePassword(ctx, u.ID, passwordHash)
	}
	if err != nil {
		logger.Error("Failed to reset password", "user", u.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, models.ForgotPasswordResponse{Success: true, Message: "Password reset successful!"})
}
