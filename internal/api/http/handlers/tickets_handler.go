package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Submit POST /api/tickets. Public.
func (h *TicketsHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Submit(c.UserContext(), service.TicketSubmission{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Name:         req.CreatedByName,
		Surname:      req.CreatedBySurname,
		Department:   req.CreatedByDepartment,
		ForwardedFor: c.Get(fiber.HeaderXForwardedFor),
		RemoteAddr:   c.Context().RemoteAddr().String(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketList(tickets)})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// Toggle POST /api/tickets/:id/toggle.
func (h *TicketsHandler) Toggle(c *fiber.Ctx) error {
	ticket, err := h.service.ToggleStatus(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// Update PUT /api/tickets/:id. Admin only.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Update(c.UserContext(), c.Params("id"), service.TicketUpdate{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Priority:         req.Priority,
		AssignedTo:       req.AssignedTo,
		Category:         req.Category,
		RejectionComment: req.RejectionComment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(*ticket)})
}

// Delete DELETE /api/tickets/:id. Admin only.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Cleanup POST /api/tickets/cleanup. Admin only.
func (h *TicketsHandler) Cleanup(c *fiber.Ctx) error {
	removed, err := h.service.CleanupOldTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CleanupResponse{Removed: removed}})
}

func parseTicketFilter(c *fiber.Ctx) (domain.TicketFilter, error) {
	filter := domain.TicketFilter{
		Status:     domain.TicketStatus(c.Query(string(domain.FilterStatus))),
		Priority:   domain.TicketPriority(c.Query(string(domain.FilterPriority))),
		AssignedTo: domain.Assignee(c.Query(string(domain.FilterAssignedTo))),
		Category:   domain.Category(c.Query(string(domain.FilterCategory))),
	}
	details := map[string]any{}
	if filter.Status != "" && !filter.Status.Valid() {
		details["status"] = "unknown status"
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		details["priority"] = "unknown priority"
	}
	if filter.AssignedTo != "" && !filter.AssignedTo.Valid() {
		details["assigned_to"] = "unknown assignee"
	}
	if filter.Category != "" && !filter.Category.Valid() {
		details["category"] = "unknown category"
	}
	if len(details) > 0 {
		return domain.TicketFilter{}, apperrors.NewValidationError("invalid filter", details)
	}
	return filter, nil
}
