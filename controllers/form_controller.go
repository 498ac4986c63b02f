package controller

import (
	"log"
	"strconv"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ziraweb/automation"
	"ziraweb/models"
)

// FormController handles the public website form endpoints. Each submission
// is persisted first and then run through the automation pipeline; email
// delivery is a best-effort side effect, so the caller gets a success
// response even when individual rules fail.
type FormController struct {
	DB       *gorm.DB
	Pipeline *automation.Pipeline
	Logger   *log.Logger
}

func NewFormController(db *gorm.DB, pipeline *automation.Pipeline, logger *log.Logger) *FormController {
	return &FormController{DB: db, Pipeline: pipeline, Logger: logger}
}

func (fc *FormController) SubmitContact(c *fiber.Ctx) error {
	return fc.handleSubmission(c, "contact")
}

func (fc *FormController) SubmitCareer(c *fiber.Ctx) error {
	return fc.handleSubmission(c, "career_application")
}

func (fc *FormController) SubmitDemo(c *fiber.Ctx) error {
	return fc.handleSubmission(c, "demo_booking")
}

func (fc *FormController) handleSubmission(c *fiber.Ctx, formType string) error {
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	fields := stringifyFields(raw)

	// The endpoint fixes the form type, but a more specific one in the
	// payload (e.g. "demo_zira_sms") wins so product extraction works.
	if v := fields["form_type"]; v != "" {
		formType = v
	} else if v := fields["formType"]; v != "" {
		formType = v
	}

	if fields["name"] == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "name is required",
		})
	}
	if fields["email"] == "" || checkmail.ValidateFormat(fields["email"]) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a valid email is required",
		})
	}

	canonical, product := automation.Normalize(formType)

	submission := models.FormSubmission{
		Reference:     uuid.NewString(),
		FormType:      formType,
		CanonicalType: canonical,
		ProductKey:    product,
		Name:          fields["name"],
		Email:         fields["email"],
		Phone:         fields["phone"],
		Company:       fields["company"],
		SourceIP:      c.IP(),
		Origin:        c.Get("Origin"),
	}
	if err := submission.SetFields(fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid form fields",
		})
	}

	if err := fc.DB.Create(&submission).Error; err != nil {
		fc.Logger.Printf("failed to persist %s submission: %v", formType, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save submission",
		})
	}

	outcome := fc.Pipeline.Process(c.UserContext(), automation.SubmissionFromModel(&submission))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reference": submission.Reference,
		"matched":   outcome.Matched,
		"processed": outcome.Processed,
	})
}

// stringifyFields coerces the JSON field bag to strings at the boundary so
// the pipeline never deals with dynamic types. Nested values are dropped.
func stringifyFields(raw map[string]interface{}) map[string]string {
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case float64:
			if v == float64(int64(v)) {
				fields[key] = strconv.FormatInt(int64(v), 10)
			} else {
				fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		case bool:
			fields[key] = strconv.FormatBool(v)
		case nil:
			// dropped
		}
	}
	return fields
}
