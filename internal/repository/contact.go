package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/Miro-wq/phonebook-api/internal/model"
)

// ErrContactNotFound is returned when no contact has the requested id.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository defines the interface for contact storage operations.
type ContactRepository interface {
	ListContacts(ctx context.Context) ([]model.Contact, error)
	GetContact(ctx context.Context, id string) (*model.Contact, error)
	CreateContact(ctx context.Context, contact model.Contact) (*model.Contact, error)
	ReplaceContact(ctx context.Context, id string, contact model.Contact) (*model.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// contactFileRepository keeps the whole collection in a single JSON file. Each
// mutation loads the full array, edits it in memory, and rewrites the file.
// There is no concurrent-writer protection: simultaneous mutations race on the
// read-modify-write cycle and the last write wins.
type contactFileRepository struct {
	path string
}

// NewContactFileRepository creates a file-backed ContactRepository. The file
// is created with an empty collection if it does not exist yet.
func NewContactFileRepository(path string) (ContactRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create contacts directory: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to initialize contacts file: %w", err)
		}
	} else if err != nil {
		return nil, err
	}

	return &contactFileRepository{path: path}, nil
}

func (r *contactFileRepository) ListContacts(_ context.Context) ([]model.Contact, error) {
	return r.read()
}

func (r *contactFileRepository) GetContact(_ context.Context, id string) (*model.Contact, error) {
	contacts, err := r.read()
	if err != nil {
		return nil, err
	}

	for _, c := range contacts {
		if c.ID == id {
			return &c, nil
		}
	}

	return nil, ErrContactNotFound
}

func (r *contactFileRepository) CreateContact(_ context.Context, contact model.Contact) (*model.Contact, error) {
	contacts, err := r.read()
	if err != nil {
		return nil, err
	}

	contact.ID = uuid.NewString()
	contacts = append(contacts, contact)

	if err := r.write(contacts); err != nil {
		return nil, err
	}

	return &contact, nil
}

func (r *contactFileRepository) ReplaceContact(_ context.Context, id string, contact model.Contact) (*model.Contact, error) {
	contacts, err := r.read()
	if err != nil {
		return nil, err
	}

	for i, c := range contacts {
		if c.ID == id {
			contact.ID = id
			// The favorite flag is not part of the replace payload and
			// survives the rewrite.
			contact.Favorite = c.Favorite
			contacts[i] = contact

			if err := r.write(contacts); err != nil {
				return nil, err
			}

			return &contact, nil
		}
	}

	return nil, ErrContactNotFound
}

func (r *contactFileRepository) DeleteContact(_ context.Context, id string) error {
	contacts, err := r.read()
	if err != nil {
		return err
	}

	for i, c := range contacts {
		if c.ID == id {
			contacts = append(contacts[:i], contacts[i+1:]...)
			return r.write(contacts)
		}
	}

	return ErrContactNotFound
}

func (r *contactFileRepository) read() ([]model.Contact, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read contacts file: %w", err)
	}

	var contacts []model.Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, fmt.Errorf("failed to parse contacts file: %w", err)
	}

	return contacts, nil
}

func (r *contactFileRepository) write(contacts []model.Contact) error {
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write contacts file: %w", err)
	}

	return nil
}
