package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/documents"
)

type ProfileResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	DOB      string `json:"dob"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl"`
}

func (h *handler) GetProfile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, ProfileResponse{
		Name:     user.Name,
		Email:    user.Email,
		Phone:    user.Phone,
		DOB:      user.Pref("dob"),
		Address:  user.Pref("address"),
		ImageURL: user.Pref("imageUrl"),
	})
}

func (h *handler) UploadProfilePhoto(c *gin.Context) {
	if h.profile == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Profile photos are not configured"})
		return
	}

	file, closeFile, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeFile()

	ctx := c.Request.Context()
	secret := middleware.SessionSecret(c)
	doc, err := h.profile.Upload(ctx, secret, file, documents.ProfileImageTypes)
	if err != nil {
		if errors.Is(err, documents.ErrDisallowedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file format. Only PNG, JPG, JPEG, and WEBP are allowed."})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload profile picture."})
		return
	}

	user, _ := middleware.CurrentUser(c)

	// Appwrite replaces prefs wholesale, so keep the existing ones.
	prefs := make(map[string]string, len(user.Prefs)+1)
	for k, v := range user.Prefs {
		prefs[k] = v
	}
	prefs["imageUrl"] = doc.RetrievalURL

	if _, err := h.accounts.UpdatePrefs(ctx, secret, prefs); err != nil {
		log.Printf("❌ Error updating profile photo: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload profile picture."})
		return
	}
	h.gate.Forget(ctx, secret)

	c.JSON(http.StatusOK, gin.H{"imageUrl": doc.RetrievalURL})
}
