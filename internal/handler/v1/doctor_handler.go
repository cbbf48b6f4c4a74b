package v1

import (
	"net/http"

	"github.com/clinicdesk/clinicdesk/internal/domain/doctor"
	"github.com/clinicdesk/clinicdesk/internal/service"
	"github.com/gin-gonic/gin"
)

type DoctorHandler struct {
	svc *service.DoctorService
}

func NewDoctorHandler(svc *service.DoctorService) *DoctorHandler {
	return &DoctorHandler{svc: svc}
}

type createDoctorRequest struct {
	Document   string `json:"document" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Speciality string `json:"speciality" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone"`
}

type updateDoctorRequest struct {
	Name       *string `json:"name"`
	Speciality *string `json:"speciality"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
}

func (h *DoctorHandler) Create(c *gin.Context) {
	var req createDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ip := callerIdentity(c)
	d, err := h.svc.CreateDoctor(c.Request.Context(), &doctor.CreateDoctorCommand{
		Document:   req.Document,
		Name:       req.Name,
		Speciality: req.Speciality,
		Email:      req.Email,
		Phone:      req.Phone,
	}, callerID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, d)
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.GetDoctor(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

func (h *DoctorHandler) GetByDocument(c *gin.Context) {
	d, err := h.svc.GetByDocument(c.Request.Context(), c.Param("document"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID, ip := callerIdentity(c)
	d, err := h.svc.UpdateDoctor(c.Request.Context(), id, &doctor.UpdateDoctorCommand{
		Name:       req.Name,
		Speciality: req.Speciality,
		Email:      req.Email,
		Phone:      req.Phone,
	}, callerID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, d)
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, ip := callerIdentity(c)
	if err := h.svc.DeleteDoctor(c.Request.Context(), id, callerID, ip); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *DoctorHandler) List(c *gin.Context) {
	// Optional ?speciality= filter.
	if speciality := c.Query("speciality"); speciality != "" {
		doctors, err := h.svc.ListBySpeciality(c.Request.Context(), speciality)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, doctors)
		return
	}

	doctors, err := h.svc.ListDoctors(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, doctors)
}

func (h *DoctorHandler) Specialities(c *gin.Context) {
	specialities, err := h.svc.Specialities(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, specialities)
}
