package identity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
)

// OrganizationController serves the protected organization management
// endpoints.
type OrganizationController struct {
	Repo    RepositoryManager
	Creator *CreateOrganizationHandler
	Updater *UpdateOrganizationHandler
	Deleter *DeleteOrganizationHandler
	Logger  Logger
}

func NewOrganizationController(repo RepositoryManager, logger Logger) *OrganizationController {
	if logger == nil {
		logger = defLogger{}
	}
	return &OrganizationController{
		Repo:    repo,
		Creator: NewCreateOrganizationHandler(repo),
		Updater: NewUpdateOrganizationHandler(repo),
		Deleter: NewDeleteOrganizationHandler(repo),
		Logger:  logger,
	}
}

type OrganizationResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toOrganizationResponse(org *Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:          org.ID.String(),
		Name:        org.Name,
		Description: org.Description,
		Active:      org.Active,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}
}

func toOrganizationResponses(orgs []*Organization) []OrganizationResponse {
	out := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		out = append(out, toOrganizationResponse(org))
	}
	return out
}

// List returns all live organizations.
func (o *OrganizationController) List(c *fiber.Ctx) error {
	orgs, err := o.Repo.Organizations().ListAll(c.UserContext())
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "", toOrganizationResponses(orgs))
}

// Get returns a single organization.
func (o *OrganizationController) Get(c *fiber.Ctx) error {
	id, err := parseEntityID(c.Params("id"), "organization")
	if err != nil {
		return WriteError(c, err)
	}

	org, err := o.Repo.Organizations().FindByID(c.UserContext(), id)
	if err != nil {
		if IsNotFound(err) {
			return WriteError(c, NewNotFound("organization", c.Params("id")))
		}
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "", toOrganizationResponse(org))
}

type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate will run validation rules
func (r CreateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
			validation.Length(2, 100),
		),
	)
}

// Create creates an organization.
func (o *OrganizationController) Create(c *fiber.Ctx) error {
	payload := new(CreateOrganizationRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	org, err := o.Creator.Execute(c.UserContext(), CreateOrganizationMessage{
		Name:        payload.Name,
		Description: payload.Description,
	})
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusCreated, "organization created successfully", toOrganizationResponse(org))
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// Validate will run validation rules
func (r UpdateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Length(2, 100),
		),
	)
}

// Update applies a partial update to an organization.
func (o *OrganizationController) Update(c *fiber.Ctx) error {
	payload := new(UpdateOrganizationRequest)

	if err := c.BodyParser(payload); err != nil {
		return WriteError(c, errInvalidBody(err))
	}

	if err := payload.Validate(); err != nil {
		return WriteError(c, err)
	}

	org, err := o.Updater.Execute(c.UserContext(), UpdateOrganizationMessage{
		ID:          c.Params("id"),
		Name:        payload.Name,
		Description: payload.Description,
		Active:      payload.Active,
	})
	if err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "organization updated successfully", toOrganizationResponse(org))
}

// Delete soft-deletes an organization, refusing while users still belong to
// it.
func (o *OrganizationController) Delete(c *fiber.Ctx) error {
	if err := o.Deleter.Execute(c.UserContext(), DeleteOrganizationMessage{
		ID: c.Params("id"),
	}); err != nil {
		return WriteError(c, err)
	}

	return SuccessResponse(c, fiber.StatusOK, "organization deleted successfully", nil)
}
