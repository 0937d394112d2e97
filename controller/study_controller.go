package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/models"
	"github.com/itish2003/studysense/services"
)

// maxUploadBytes caps a single uploaded note.
var maxUploadBytes int64 = 32 << 20

// StudyController handles the HTTP requests for the study API. It only
// translates between HTTP and the services.
type StudyController struct {
	subjects   services.SubjectService
	knowledge  services.KnowledgeService
	flashcards services.FlashcardService
	generation services.GenerationService
	log        logger.Logger
}

func NewStudyController(
	subjects services.SubjectService,
	knowledge services.KnowledgeService,
	flashcards services.FlashcardService,
	generation services.GenerationService,
	log logger.Logger,
) *StudyController {
	return &StudyController{
		subjects:   subjects,
		knowledge:  knowledge,
		flashcards: flashcards,
		generation: generation,
		log:        log,
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidSubject),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrInvalidFlashcard):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (c *StudyController) fail(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.log.Error("API", "request failed", map[string]interface{}{
			"path":  ctx.FullPath(),
			"error": err,
		})
	}
	ctx.JSON(status, models.MessageResponse{Error: err.Error()})
}

func tooLarge(ctx *gin.Context, fileName string) {
	ctx.JSON(http.StatusRequestEntityTooLarge, models.MessageResponse{
		Error: fmt.Sprintf("%s exceeds the %d byte upload limit", fileName, maxUploadBytes),
	})
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, models.MessageResponse{Error: "Invalid request body: " + err.Error()})
}

// ListSubjects handles GET /api/v1/subjects.
func (c *StudyController) ListSubjects(ctx *gin.Context) {
	subjects, err := c.subjects.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

// CreateSubject handles POST /api/v1/subjects.
func (c *StudyController) CreateSubject(ctx *gin.Context) {
	var req models.CreateSubjectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	key, err := c.subjects.Create(ctx.Request.Context(), req.Name)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, models.MessageResponse{
		Message: fmt.Sprintf("Subject '%s' created", services.DisplayName(key)),
	})
}

// DeleteSubject handles DELETE /api/v1/subjects/:subject.
func (c *StudyController) DeleteSubject(ctx *gin.Context) {
	subject := ctx.Param("subject")
	if err := c.subjects.Delete(ctx.Request.Context(), subject); err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.MessageResponse{Message: fmt.Sprintf("Subject '%s' deleted", subject)})
}

// UploadNotes handles POST /api/v1/subjects/:subject/notes with one or more
// multipart "files". Every file's format and size is checked before any is
// ingested. When a later file fails, the notes already written are listed
// next to the error.
func (c *StudyController) UploadNotes(ctx *gin.Context) {
	subject := ctx.Param("subject")

	form, err := ctx.MultipartForm()
	if err != nil {
		badRequest(ctx, err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, models.MessageResponse{Error: "no files uploaded"})
		return
	}
	for _, fh := range files {
		if !services.IsSupported(fh.Filename) {
			ctx.JSON(http.StatusBadRequest, models.MessageResponse{
				Error: fmt.Sprintf("%s: %s", services.ErrUnsupportedFormat, filepath.Ext(fh.Filename)),
			})
			return
		}
		if fh.Size > maxUploadBytes {
			tooLarge(ctx, fh.Filename)
			return
		}
	}

	notes := make([]models.NoteSummary, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			badRequest(ctx, err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		f.Close()
		if err != nil {
			badRequest(ctx, err)
			return
		}
		if int64(len(data)) > maxUploadBytes {
			tooLarge(ctx, fh.Filename)
			return
		}

		note, err := c.knowledge.Ingest(ctx.Request.Context(), subject, data, fh.Filename)
		if err != nil {
			if len(notes) == 0 {
				c.fail(ctx, err)
				return
			}
			c.log.Warn("API", "upload stopped after partial ingest", map[string]interface{}{
				"subject": subject,
				"file":    fh.Filename,
				"written": len(notes),
				"error":   err.Error(),
			})
			ctx.JSON(statusFor(err), models.ListNotesResponse{Count: len(notes), Notes: notes, Error: err.Error()})
			return
		}
		notes = append(notes, note.Summary())
	}
	ctx.JSON(http.StatusCreated, models.ListNotesResponse{Count: len(notes), Notes: notes})
}

// ListNotes handles GET /api/v1/subjects/:subject/notes.
func (c *StudyController) ListNotes(ctx *gin.Context) {
	notes, err := c.knowledge.ListBySubject(ctx.Request.Context(), ctx.Param("subject"))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	summaries := make([]models.NoteSummary, 0, len(notes))
	for _, n := range notes {
		summaries = append(summaries, n.Summary())
	}
	ctx.JSON(http.StatusOK, models.ListNotesResponse{Count: len(summaries), Notes: summaries})
}

// Ask handles POST /api/v1/ask.
func (c *StudyController) Ask(ctx *gin.Context) {
	var req models.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	answer, err := c.generation.AnswerQuestion(ctx.Request.Context(), req.Subject, req.Question)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.AskResponse{Subject: req.Subject, Question: req.Question, Answer: answer})
}

// Practice handles POST /api/v1/practice.
func (c *StudyController) Practice(ctx *gin.Context) {
	var req models.PracticeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	questions, err := c.generation.GeneratePracticeQuestions(ctx.Request.Context(), req.Subject, req.NumQuestions)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"questions": questions})
}

// Evaluate handles POST /api/v1/evaluate.
func (c *StudyController) Evaluate(ctx *gin.Context) {
	var req models.EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	evaluation, err := c.generation.EvaluateAnswer(ctx.Request.Context(), req.Subject, req.Question, req.UserAnswer)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, evaluation)
}

// GenerateFlashcards handles POST /api/v1/flashcards/generate. The generated
// cards are stored before they are returned.
func (c *StudyController) GenerateFlashcards(ctx *gin.Context) {
	var req models.GenerateFlashcardsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	resp, err := c.generation.CreateFlashcards(ctx.Request.Context(), req.Subject, req.NumFlashcards)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListFlashcards handles GET /api/v1/subjects/:subject/flashcards.
func (c *StudyController) ListFlashcards(ctx *gin.Context) {
	cards, err := c.flashcards.List(ctx.Request.Context(), ctx.Param("subject"))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"flashcards": cards})
}

// SaveFlashcard handles POST /api/v1/subjects/:subject/flashcards.
func (c *StudyController) SaveFlashcard(ctx *gin.Context) {
	var req models.SaveFlashcardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	saved, err := c.flashcards.Save(ctx.Request.Context(), ctx.Param("subject"), []models.FlashcardDraft{
		{Question: req.Question, Answer: req.Answer},
	})
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, saved[0])
}

// DeleteFlashcard handles DELETE /api/v1/subjects/:subject/flashcards/:id.
func (c *StudyController) DeleteFlashcard(ctx *gin.Context) {
	deleted, err := c.flashcards.DeleteOne(ctx.Request.Context(), ctx.Param("subject"), ctx.Param("id"))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	if !deleted {
		ctx.JSON(http.StatusNotFound, models.DeleteResponse{Deleted: false})
		return
	}
	ctx.JSON(http.StatusOK, models.DeleteResponse{Deleted: true})
}
