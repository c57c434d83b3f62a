package handlers

import (
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
)

// phonePattern is E.164: a leading '+' and up to 15 digits.
var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

type SignupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !phonePattern.MatchString(req.Phone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number. It must start with '+' and have up to 15 digits, e.g., +14155552671."})
		return
	}
	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Full name is required."})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.accounts.CreateAccount(ctx, uuid.NewString(), req.Email, req.Password, req.FullName); err != nil {
		log.Printf("❌ Error creating account: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create account. Please try again."})
		return
	}

	sess, err := h.accounts.CreateEmailSession(ctx, req.Email, req.Password)
	if err != nil || sess.Secret == "" {
		log.Printf("❌ Error creating session after signup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account. Please try again."})
		return
	}

	if _, err := h.accounts.UpdatePhone(ctx, sess.Secret, req.Phone, req.Password); err != nil {
		log.Printf("❌ Error saving phone number: %v", err)
		if delErr := h.accounts.DeleteCurrentSession(ctx, sess.Secret); delErr != nil {
			log.Printf("Failed to delete session: %v", delErr)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create account. Please try again."})
		return
	}

	h.startSession(c, sess.Secret, sess.UserID, http.StatusCreated)
}

func (h *handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := h.accounts.CreateEmailSession(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		log.Printf("⚠️  Login failed for %s: %v", req.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if sess.Secret == "" {
		log.Println("❌ Appwrite returned a session without a secret, check APPWRITE_API_KEY")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	h.startSession(c, sess.Secret, sess.UserID, http.StatusOK)
}

// startSession resolves the user, sets the envelope cookie and responds.
func (h *handler) startSession(c *gin.Context, secret, userID string, status int) {
	check := h.gate.Check(c.Request.Context(), secret)
	if !check.Authenticated {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	token, expiresAt, err := h.cookie.Sign(secret, userID)
	if err != nil {
		log.Printf("❌ Error signing session cookie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	h.cookie.Set(c, token, expiresAt)

	c.JSON(status, gin.H{
		"user":      check.User,
		"expiresAt": expiresAt,
	})
}

func (h *handler) Logout(c *gin.Context) {
	secret := middleware.SessionSecret(c)
	user, _ := middleware.CurrentUser(c)

	ctx := c.Request.Context()
	if err := h.accounts.DeleteCurrentSession(ctx, secret); err != nil {
		log.Printf("⚠️  Failed to delete Appwrite session: %v", err)
	}
	h.gate.Forget(ctx, secret)
	h.chat.Drop(user.ID)
	h.cookie.Clear(c)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *handler) Me(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, user)
}
