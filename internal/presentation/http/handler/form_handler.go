package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/rayypan/invoicegeneration/internal/application/service"
	"github.com/rayypan/invoicegeneration/internal/presentation/http/dto/response"
)

// FormHandler handles invoice form session HTTP requests
type FormHandler struct {
	formService *service.FormService
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// UpdateFieldRequest represents a single field update. Value is either a
// string or a boolean, matching the field being updated.
type UpdateFieldRequest struct {
	Field string          `json:"field" binding:"required"`
	Value json.RawMessage `json:"value"`
}

// UpdateItemRequest represents a single line item field update
type UpdateItemRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// PasswordRequest represents the signatory password entry
type PasswordRequest struct {
	Password string `json:"password"`
}

// Create handles starting a new form session
// @Summary Create Session
// @Description Start a new invoice form session with default state
// @Tags sessions
// @Produce json
// @Success 201 {object} response.APIResponse
// @Router /sessions [post]
func (h *FormHandler) Create(c *gin.Context) {
	snapshot, err := h.formService.CreateSession(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Session created successfully", snapshot)
}

// Get handles reading a form session
// @Summary Get Session
// @Description Get the current state, calculations, and validations of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id} [get]
func (h *FormHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.formService.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Session retrieved successfully", snapshot)
}

// Delete handles discarding a form session
// @Summary Delete Session
// @Description Discard a form session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *FormHandler) Delete(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.formService.DeleteSession(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// UpdateField handles a single field update
// @Summary Update Field
// @Description Apply one field update and its transition rules
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body UpdateFieldRequest true "Field update"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/fields [post]
func (h *FormHandler) UpdateField(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	value, err := decodeFieldValue(req.Value)
	if err != nil {
		response.BadRequest(c, "Field value must be a string or a boolean")
		return
	}

	snapshot, err := h.formService.UpdateField(c.Request.Context(), id, req.Field, value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Field updated successfully", snapshot)
}

// AddItem handles appending an empty line item
// @Summary Add Item
// @Description Append an empty line item to the form
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/items [post]
func (h *FormHandler) AddItem(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	snapshot, err := h.formService.AddItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added successfully", snapshot)
}

// UpdateItem handles a single line item field update
// @Summary Update Item
// @Description Apply one field update to a line item
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index"
// @Param request body UpdateItemRequest true "Item field update"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/items/{index} [patch]
func (h *FormHandler) UpdateItem(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	index, ok := itemIndex(c)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	snapshot, err := h.formService.UpdateItem(c.Request.Context(), id, index, req.Field, req.Value)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", snapshot)
}

// RemoveItem handles removing a line item
// @Summary Remove Item
// @Description Remove the line item at the given index
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Item index"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/items/{index} [delete]
func (h *FormHandler) RemoveItem(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	index, ok := itemIndex(c)
	if !ok {
		return
	}

	snapshot, err := h.formService.RemoveItem(c.Request.Context(), id, index)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", snapshot)
}

// SetPassword handles the signatory password entry
// @Summary Set Password
// @Description Record the entered password and check it against the selected signatory
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body PasswordRequest true "Password entry"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/password [put]
func (h *FormHandler) SetPassword(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	snapshot, err := h.formService.SetPassword(c.Request.Context(), id, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Password recorded", snapshot)
}

// Validate handles form-level validation
// @Summary Validate Form
// @Description Run full form validation and return the results
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/validate [post]
func (h *FormHandler) Validate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	valid, snapshot, err := h.formService.ValidateForm(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Form is valid"
	if !valid {
		message = "Form has invalid fields"
	}
	response.OK(c, message, gin.H{"valid": valid, "session": snapshot})
}

// Submit handles invoice submission
// @Summary Submit Invoice
// @Description Validate, build the payload, and deliver it to the generation endpoint
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.APIResponse
// @Router /sessions/{id}/submit [post]
func (h *FormHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	message, snapshot, err := h.formService.Submit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, snapshot)
}

// Signatories handles listing the signatory roster
// @Summary List Signatories
// @Description Get the configured signatory roster for the issued-by dropdown
// @Tags signatories
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /signatories [get]
func (h *FormHandler) Signatories(c *gin.Context) {
	response.OK(c, "Signatories retrieved successfully", h.formService.Signatories())
}

// decodeFieldValue accepts a JSON string or boolean and nothing else.
func decodeFieldValue(raw json.RawMessage) (any, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return b, nil
}
