package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/api/middleware"
	"github.com/imcalledaditi/MomCare-AI-Assistant/internal/appointments"
)

func (h *handler) ListSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"slots": h.appointments.Slots()})
}

func (h *handler) BookAppointment(c *gin.Context) {
	var req appointments.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	appt, err := h.appointments.Book(c.Request.Context(), user, req)
	if err != nil {
		if errors.Is(err, appointments.ErrIncomplete) ||
			errors.Is(err, appointments.ErrInvalidSlot) ||
			errors.Is(err, appointments.ErrInvalidDate) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("❌ Error booking appointment: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book appointment"})
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (h *handler) ListAppointments(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	appts, err := h.appointments.List(c.Request.Context(), user)
	if err != nil {
		log.Printf("❌ Error listing appointments: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}
	c.JSON(http.StatusOK, appts)
}
