package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/geo"
)

func (h *handler) NearbyHospitals(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	coords := geo.Coordinates{Latitude: lat, Longitude: lng}
	if latErr != nil || lngErr != nil || !coords.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}

	hospitals, err := h.hospitals.NearbyHospitals(c.Request.Context(), coords, h.config.HospitalsLimit)
	if err != nil {
		log.Printf("❌ Error finding hospitals: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to find nearby hospitals"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"hospitals": hospitals})
}
