package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/handler"
	"github.com/acadex/acadex-api/internal/policy"
	"github.com/acadex/acadex-api/internal/service"
)

// The student schema closes the question object so any extra field, the
// correct answer above all, fails validation.
const studentViewSchema = `{
	"type": "object",
	"required": ["success", "data", "message"],
	"properties": {
		"success": {"type": "boolean"},
		"message": {"type": "string"},
		"data": {
			"type": "object",
			"required": ["id", "title", "questions", "timer_minutes"],
			"properties": {
				"id": {"type": "integer"},
				"title": {"type": "string"},
				"description": {"type": "string"},
				"timer_minutes": {"type": "integer", "minimum": 1},
				"questions": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"required": ["index", "text", "options"],
						"additionalProperties": false,
						"properties": {
							"index": {"type": "integer", "minimum": 0},
							"text": {"type": "string"},
							"options": {"type": "array", "minItems": 2, "items": {"type": "string"}}
						}
					}
				}
			}
		}
	}
}`

const teacherViewSchema = `{
	"type": "object",
	"required": ["success", "data", "message"],
	"properties": {
		"success": {"type": "boolean"},
		"message": {"type": "string"},
		"data": {
			"type": "object",
			"required": ["id", "title", "questions", "timer_minutes", "created_by_id"],
			"properties": {
				"questions": {
					"type": "array",
					"minItems": 1,
					"items": {
						"type": "object",
						"required": ["index", "text", "options", "correct_answer"],
						"properties": {
							"correct_answer": {"type": "string"}
						}
					}
				}
			}
		}
	}
}`

type stubAssessmentService struct {
	view service.AssessmentView
}

func (s stubAssessmentService) Create(context.Context, policy.Principal, dto.AssessmentDraft) (dto.TeacherAssessmentView, error) {
	return dto.TeacherAssessmentView{}, nil
}

func (s stubAssessmentService) Update(context.Context, policy.Principal, uint, dto.AssessmentDraft) (dto.TeacherAssessmentView, error) {
	return dto.TeacherAssessmentView{}, nil
}

func (s stubAssessmentService) Delete(context.Context, policy.Principal, uint) error {
	return nil
}

func (s stubAssessmentService) ListOwned(context.Context, policy.Principal) ([]dto.TeacherAssessmentView, error) {
	return nil, nil
}

func (s stubAssessmentService) GetForPrincipal(context.Context, policy.Principal, uint) (service.AssessmentView, error) {
	return s.view, nil
}

func compileSchema(t *testing.T, name, raw string) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource(name, strings.NewReader(raw)))
	schema, err := compiler.Compile(name)
	require.NoError(t, err)
	return schema
}

func fetchAssessment(t *testing.T, svc service.AssessmentService, role string) []byte {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	h := handler.NewAssessmentHandler(svc, validate, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/assessments", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", role)
		return c.Next()
	})
	h.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return body
}

func TestStudentViewNeverCarriesCorrectAnswer(t *testing.T) {
	schema := compileSchema(t, "student_view.schema.json", studentViewSchema)

	view := dto.StudentAssessmentView{
		ID:          1,
		Title:       "Unit 3 Checkpoint",
		Description: "Covers chapters 5 and 6",
		Questions: []dto.StudentQuestionView{
			{Index: 0, Text: "What is the boiling point of water at sea level?", Options: []string{"90C", "100C", "110C"}},
			{Index: 1, Text: "Which gas do plants absorb?", Options: []string{"Oxygen", "Carbon dioxide"}},
		},
		TimerMinutes: 15,
	}

	svc := stubAssessmentService{view: service.AssessmentView{Student: &view}}
	body := fetchAssessment(t, svc, "student")

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
	require.NotContains(t, string(body), "correct_answer")
}

func TestTeacherViewCarriesCorrectAnswer(t *testing.T) {
	schema := compileSchema(t, "teacher_view.schema.json", teacherViewSchema)

	view := dto.TeacherAssessmentView{
		ID:          1,
		Title:       "Unit 3 Checkpoint",
		Description: "Covers chapters 5 and 6",
		Questions: []dto.TeacherQuestionView{
			{Index: 0, Text: "What is the boiling point of water at sea level?", Options: []string{"90C", "100C", "110C"}, CorrectAnswer: "100C"},
		},
		TimerMinutes: 15,
		CreatedByID:  1,
	}

	svc := stubAssessmentService{view: service.AssessmentView{Teacher: &view}}
	body := fetchAssessment(t, svc, "teacher")

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
