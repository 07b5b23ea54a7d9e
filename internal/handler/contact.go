package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Miro-wq/phonebook-api/internal/model"
	"github.com/Miro-wq/phonebook-api/internal/payload"
	"github.com/Miro-wq/phonebook-api/internal/repository"
	"github.com/Miro-wq/phonebook-api/internal/usecase"
	"github.com/Miro-wq/phonebook-api/internal/validation"
)

// ContactHandler serves the contact CRUD routes. No auth gate applies here.
type ContactHandler struct {
	contactUC usecase.ContactUsecase
	validate  *validation.Validator
	logger    *zerolog.Logger
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(contactUC usecase.ContactUsecase, validate *validation.Validator, logger *zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		contactUC: contactUC,
		validate:  validate,
		logger:    logger,
	}
}

// RegisterRoutes mounts the contact routes on r.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{contactID}", h.Get)
	r.Put("/{contactID}", h.Update)
	r.Delete("/{contactID}", h.Delete)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contactUC.ListContacts(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list contacts")
		respondInternalError(w)
		return
	}

	if contacts == nil {
		contacts = []model.Contact{}
	}

	respondJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contactUC.GetContact(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			respondMessage(w, http.StatusNotFound, "Not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to get contact")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeContact(w, r)
	if !ok {
		return
	}

	contact, err := h.contactUC.CreateContact(r.Context(), model.Contact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create contact")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeContact(w, r)
	if !ok {
		return
	}

	contact, err := h.contactUC.UpdateContact(r.Context(), chi.URLParam(r, "contactID"), model.Contact{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			respondMessage(w, http.StatusNotFound, "Not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to update contact")
		respondInternalError(w)
		return
	}

	respondJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.contactUC.DeleteContact(r.Context(), chi.URLParam(r, "contactID"))
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			respondMessage(w, http.StatusNotFound, "Not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to delete contact")
		respondInternalError(w)
		return
	}

	respondMessage(w, http.StatusOK, "contact deleted")
}

// decodeContact decodes and validates a contact body, writing the 400
// response itself when the payload is bad.
func (h *ContactHandler) decodeContact(w http.ResponseWriter, r *http.Request) (payload.ContactRequest, bool) {
	var req payload.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	if err := h.validate.Struct(req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return req, false
	}

	return req, true
}
