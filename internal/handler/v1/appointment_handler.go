package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/appointment"
	"github.com/clinicdesk/clinicdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

type scheduleRequest struct {
	DoctorID  string `json:"doctor_id" binding:"required,uuid"`
	PatientID string `json:"patient_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Reason    string `json:"reason"`
}

type rescheduleRequest struct {
	scheduleRequest
	Status *string `json:"status"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type availabilityResponse struct {
	DoctorID       string   `json:"doctor_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
}

type notificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

func (h *AppointmentHandler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd, ok := req.toCommand(c)
	if !ok {
		return
	}

	callerID, ip := callerIdentity(c)
	a, err := h.svc.Schedule(c.Request.Context(), cmd, callerID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, a)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	base, ok := req.scheduleRequest.toCommand(c)
	if !ok {
		return
	}

	cmd := &appointment.RescheduleCommand{
		DoctorID:  base.DoctorID,
		PatientID: base.PatientID,
		Date:      base.Date,
		Time:      base.Time,
		Reason:    base.Reason,
	}
	if req.Status != nil {
		status := appointment.Status(*req.Status)
		cmd.Status = &status
	}

	callerID, ip := callerIdentity(c)
	a, err := h.svc.Reschedule(c.Request.Context(), id, cmd, callerID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	appts, err := h.svc.ListAppointments(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	appts, err := h.svc.ListByDoctor(c.Request.Context(), doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseUUID(c, "patientId")
	if !ok {
		return
	}

	appts, err := h.svc.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) ListByStatus(c *gin.Context) {
	status := appointment.Status(c.Param("status"))

	appts, err := h.svc.ListByStatus(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) ListToday(c *gin.Context) {
	appts, err := h.svc.ListToday(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) ListUpcoming(c *gin.Context) {
	days := parseQueryInt(c, "days", 7)

	appts, err := h.svc.ListUpcoming(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, appts)
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	h.transition(c, h.svc.Confirm)
}

func (h *AppointmentHandler) MarkAttended(c *gin.Context) {
	h.transition(c, h.svc.MarkAttended)
}

func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.svc.MarkNoShow)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	// Body is optional; an empty reason falls back to the default.
	var req cancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}

	callerID, ip := callerIdentity(c)
	a, err := h.svc.Cancel(c.Request.Context(), id, req.Reason, callerID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, ip := callerIdentity(c)
	if err := h.svc.Delete(c.Request.Context(), id, callerID, ip); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	doctorID, ok := parseUUID(c, "doctorId")
	if !ok {
		return
	}

	date, ok := parseDateQuery(c)
	if !ok {
		return
	}

	slots, err := h.svc.AvailableSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, availabilityResponse{
		DoctorID:       doctorID.String(),
		Date:           date.Format(dateLayout),
		AvailableSlots: slots,
	})
}

func (h *AppointmentHandler) Statistics(c *gin.Context) {
	stats, err := h.svc.Statistics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, stats)
}

func (h *AppointmentHandler) SendReminder(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, ip := callerIdentity(c)
	sent, msg := h.svc.SendReminder(c.Request.Context(), id, callerID, ip)

	status := http.StatusOK
	if !sent {
		status = http.StatusBadGateway
	}
	c.JSON(status, APIResponse[any]{Data: notificationResponse{Sent: sent, Message: msg}})
}

func (h *AppointmentHandler) ResendConfirmation(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, ip := callerIdentity(c)
	sent, msg := h.svc.ResendConfirmation(c.Request.Context(), id, callerID, ip)

	status := http.StatusOK
	if !sent {
		status = http.StatusBadGateway
	}
	c.JSON(status, APIResponse[any]{Data: notificationResponse{Sent: sent, Message: msg}})
}

func (h *AppointmentHandler) transition(c *gin.Context, op func(ctx context.Context, id, callerID uuid.UUID, ip string) (*appointment.Appointment, error)) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	callerID, ip := callerIdentity(c)
	a, err := op(c.Request.Context(), id, callerID, ip)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, a)
}

func (req *scheduleRequest) toCommand(c *gin.Context) (*appointment.ScheduleCommand, bool) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: expected format "+dateLayout)
		return nil, false
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid doctor_id: must be a valid UUID")
		return nil, false
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid patient_id: must be a valid UUID")
		return nil, false
	}

	return &appointment.ScheduleCommand{
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		Time:      req.Time,
		Reason:    req.Reason,
	}, true
}

func parseDateQuery(c *gin.Context) (time.Time, bool) {
	raw := c.Query("date")
	if raw == "" {
		respondError(c, http.StatusBadRequest, "missing required query parameter: date")
		return time.Time{}, false
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: expected format "+dateLayout)
		return time.Time{}, false
	}
	return date, true
}
