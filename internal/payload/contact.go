package payload

// ContactRequest is the body of POST /contacts and PUT /contacts/{id}.
// Phone must be digits only.
type ContactRequest struct {
	Name  string `json:"name"  validate:"required,min=3"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,number"`
}
