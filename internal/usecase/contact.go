package usecase

import (
	"context"

	"github.com/Miro-wq/phonebook-api/internal/model"
	"github.com/Miro-wq/phonebook-api/internal/repository"
)

// ContactUsecase defines the interface for contact CRUD use cases. Contacts
// carry no authentication and no ownership.
type ContactUsecase interface {
	ListContacts(ctx context.Context) ([]model.Contact, error)
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	UpdateContact(ctx context.Context, id string, contact model.Contact) (*model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

type contactUsecase struct {
	contactRepo repository.ContactRepository
}

// NewContactUsecase creates a ContactUsecase.
func NewContactUsecase(contactRepo repository.ContactRepository) ContactUsecase {
	return &contactUsecase{contactRepo: contactRepo}
}

func (u *contactUsecase) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return u.contactRepo.ListContacts(ctx)
}

func (u *contactUsecase) GetContact(ctx context.Context, id string) (*model.Contact, error) {
	return u.contactRepo.GetContact(ctx, id)
}

func (u *contactUsecase) CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	return u.contactRepo.CreateContact(ctx, contact)
}

func (u *contactUsecase) UpdateContact(ctx context.Context, id string, contact model.Contact) (*model.Contact, error) {
	return u.contactRepo.ReplaceContact(ctx, id, contact)
}

func (u *contactUsecase) DeleteContact(ctx context.Context, id string) error {
	return u.contactRepo.DeleteContact(ctx, id)
}
