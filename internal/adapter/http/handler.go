package http

import (
	"context"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/platform/logger"
	"tailoring-engine/internal/usecase"
	"tailoring-engine/pkg/infrastructure"
)

const userHeader = "X-User-Id"

// ContextLoader resolves the tailoring context for a job.
type ContextLoader interface {
	Load(ctx context.Context, userID, jobID string) (*usecase.TailoringContext, error)
}

// MaterialGenerator is implemented by usecase.Orchestrator.
type MaterialGenerator interface {
	GenerateCVForJob(ctx context.Context, p usecase.JobParams, opts usecase.CVOptions) (*domain.CVDocument, error)
	RegenerateCVForJob(ctx context.Context, p usecase.RegenerateParams, opts usecase.CVOptions) (*domain.CVDocument, error)
	GenerateCoverLetterForJob(ctx context.Context, p usecase.JobParams, opts usecase.CoverLetterOptions) (*domain.CoverLetter, error)
	RegenerateCoverLetterForJob(ctx context.Context, p usecase.RegenerateParams, opts usecase.CoverLetterOptions) (*domain.CoverLetter, error)
	GenerateSpeechForJob(ctx context.Context, p usecase.JobParams, opts usecase.SpeechOptions) (*domain.SpeechBlock, error)
	RegenerateSpeechForJob(ctx context.Context, p usecase.RegenerateParams, opts usecase.SpeechOptions) (*domain.SpeechBlock, error)
}

// PDFRenderer prints an HTML document to PDF.
type PDFRenderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

type Deps struct {
	Loader    ContextLoader
	Materials usecase.MaterialsReader
	Generator MaterialGenerator
	Stores    Stores
	Evaluator usecase.Evaluator
	Improver  usecase.Improver
	Renderer  PDFRenderer
	Language  string
	Log       *logger.Logger
}

type Handler struct {
	loader    ContextLoader
	materials usecase.MaterialsReader
	gen       MaterialGenerator
	stores    Stores
	sessions  *Sessions
	renderer  PDFRenderer
	log       *logger.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		loader:    d.Loader,
		materials: d.Materials,
		gen:       d.Generator,
		stores:    d.Stores,
		sessions:  NewSessions(d.Stores, d.Evaluator, d.Improver, d.Language, log),
		renderer:  d.Renderer,
		log:       log.With("component", "http"),
	}
}

// Register mounts every route on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jobs := app.Group("/jobs/:jobId", requireUser)
	jobs.Get("/tailoring-context", h.GetTailoringContext)
	jobs.Post("/materials/:kind", h.Generate)
	jobs.Put("/materials/:kind/:id", h.Regenerate)

	m := app.Group("/materials", requireUser)
	m.Get("/cv/:id/pdf", h.ExportCVPDF)
	m.Get("/:kind/:id/improvement", h.GetImprovement)
	m.Post("/:kind/:id/improvement/feedback", h.RunFeedback)
	m.Post("/:kind/:id/improvement/improve", h.RunImprove)
	m.Post("/:kind/:id/improvement/presets", h.SetPresets)
	m.Post("/:kind/:id/improvement/note", h.SetNote)
	m.Post("/:kind/:id/improvement/reset", h.ResetImprovement)
	m.Post("/:kind/:id/improvement/clear-error", h.ClearImprovementError)
}

func requireUser(c *fiber.Ctx) error {
	uid := c.Get(userHeader)
	if uid == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing "+userHeader+" header")
	}
	c.Locals("userID", uid)
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	uid, _ := c.Locals("userID").(string)
	return uid
}

func kindParam(c *fiber.Ctx) (domain.MaterialKind, error) {
	k, err := domain.ParseMaterialKind(c.Params("kind"))
	if err != nil {
		return "", &usecase.ValidationError{Field: "kind", Msg: err.Error()}
	}
	return k, nil
}

// parseOptional decodes the body into dst unless it is empty.
func parseOptional(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return &usecase.ValidationError{Field: "body", Msg: "invalid payload"}
	}
	return nil
}

type tailoringContextResponse struct {
	*usecase.TailoringContext
	CanRegenerate        bool                     `json:"canRegenerate"`
	NeedsMatchingSummary bool                     `json:"needsMatchingSummary"`
	Materials            domain.TailoredMaterials `json:"materials"`
}

func (h *Handler) GetTailoringContext(c *fiber.Ctx) error {
	ctx := c.UserContext()
	uid, jobID := userID(c), c.Params("jobId")
	tc, err := h.loader.Load(ctx, uid, jobID)
	if err != nil {
		return err
	}
	existing, err := h.materials.ListByJob(ctx, uid, jobID)
	if err != nil {
		return err
	}
	return c.JSON(tailoringContextResponse{
		TailoringContext:     tc,
		CanRegenerate:        tc.CanRegenerate(),
		NeedsMatchingSummary: tc.NeedsMatchingSummary(existing),
		Materials:            existing,
	})
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	ctx := c.UserContext()
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	p, err := h.jobParams(ctx, c)
	if err != nil {
		return err
	}

	var out interface{}
	switch kind {
	case domain.KindCV:
		var opts usecase.CVOptions
		if err := parseOptional(c, &opts); err != nil {
			return err
		}
		out, err = h.gen.GenerateCVForJob(ctx, p, opts)
	case domain.KindCoverLetter:
		var opts usecase.CoverLetterOptions
		if err := parseOptional(c, &opts); err != nil {
			return err
		}
		out, err = h.gen.GenerateCoverLetterForJob(ctx, p, opts)
	case domain.KindSpeech:
		var opts usecase.SpeechOptions
		if err := parseOptional(c, &opts); err != nil {
			return err
		}
		out, err = h.gen.GenerateSpeechForJob(ctx, p, opts)
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Regenerate overwrites an existing material. Its improvement session is
// reset before the write and refuses requests until the call returns, so an
// improve finishing meanwhile cannot replace the regenerated content.
func (h *Handler) Regenerate(c *fiber.Ctx) error {
	ctx := c.UserContext()
	kind, err := kindParam(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.stores.Owns(ctx, kind, userID(c), id); err != nil {
		return err
	}
	jp, err := h.jobParams(ctx, c)
	if err != nil {
		return err
	}
	if jp.MatchingSummary == nil {
		return &usecase.ValidationError{Field: "matchingSummary", Msg: "generate a matching summary before regenerating"}
	}
	p := usecase.RegenerateParams{JobParams: jp, ID: id}

	var run func() (interface{}, error)
	switch kind {
	case domain.KindCV:
		var opts usecase.CVOptions
		if err := parseOptional(c, &opts); err != nil {
			return err
		}
		run = func() (interface{}, error) { return h.gen.RegenerateCVForJob(ctx, p, opts) }
	case domain.KindCoverLetter:
		var opts usecase.CoverLetterOptions
		if err := parseOptional(c, &opts); err != nil {
			return err
		}
		run = func() (interface{}, error) { return h.gen.RegenerateCoverLetterForJob(ctx, p, opts) }
	case domain.KindSpeech:
		var opts usecase.SpeechOptions
		if err := parseOptional(c, &opts); err != nil {
			return err
		}
		run = func() (interface{}, error) { return h.gen.RegenerateSpeechForJob(ctx, p, opts) }
	}

	done, err := h.sessions.BeginRegenerate(kind, id)
	if err != nil {
		return err
	}
	defer done()
	out, err := run()
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (h *Handler) jobParams(ctx context.Context, c *fiber.Ctx) (usecase.JobParams, error) {
	uid := userID(c)
	tc, err := h.loader.Load(ctx, uid, c.Params("jobId"))
	if err != nil {
		return usecase.JobParams{}, err
	}
	if tc == nil || tc.Job == nil {
		return usecase.JobParams{}, usecase.ErrJobNotFound
	}
	if tc.Job.UserID != "" && tc.Job.UserID != uid {
		return usecase.JobParams{}, usecase.ErrJobNotFound
	}
	return usecase.JobParams{UserID: uid, Job: tc.Job, MatchingSummary: tc.MatchingSummary}, nil
}

func (h *Handler) ExportCVPDF(c *fiber.Ctx) error {
	ctx := c.UserContext()
	doc, err := h.stores.CVs.Get(ctx, userID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if h.renderer == nil {
		return errNoRenderer
	}
	html, err := infrastructure.MarkdownToHTML(doc.Name, doc.Content)
	if err != nil {
		return err
	}
	pdf, err := h.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		h.log.Error("cv pdf render failed", "cv_id", doc.ID, "error", err)
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+pdfFileName(doc.Name)+`"`)
	return c.Send(pdf)
}

func (h *Handler) session(c *fiber.Ctx) (*usecase.ImprovementEngine, error) {
	kind, err := kindParam(c)
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(c.UserContext(), userID(c), kind, c.Params("id"))
}

func (h *Handler) GetImprovement(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(e.Snapshot())
}

func (h *Handler) RunFeedback(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	if _, err := e.RunFeedback(c.UserContext()); err != nil {
		return improvementError(c, e, err, usecase.PhaseFeedback)
	}
	return c.JSON(e.Snapshot())
}

func (h *Handler) RunImprove(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	content, err := e.RunImprove(c.UserContext())
	if err != nil {
		return improvementError(c, e, err, usecase.PhaseImprove)
	}
	return c.JSON(fiber.Map{"content": content, "improvement": e.Snapshot()})
}

type presetsReq struct {
	Presets []string `json:"presets"`
}

func (h *Handler) SetPresets(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	var req presetsReq
	if err := c.BodyParser(&req); err != nil {
		return &usecase.ValidationError{Field: "presets", Msg: "invalid payload"}
	}
	e.SetPresets(req.Presets)
	return c.JSON(e.Snapshot())
}

type noteReq struct {
	Note string `json:"note"`
}

func (h *Handler) SetNote(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	var req noteReq
	if err := c.BodyParser(&req); err != nil {
		return &usecase.ValidationError{Field: "note", Msg: "invalid payload"}
	}
	e.SetNote(req.Note)
	return c.JSON(e.Snapshot())
}

func (h *Handler) ResetImprovement(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	e.Reset()
	return c.JSON(e.Snapshot())
}

func (h *Handler) ClearImprovementError(c *fiber.Ctx) error {
	e, err := h.session(c)
	if err != nil {
		return err
	}
	e.ClearError()
	return c.JSON(e.Snapshot())
}

// improvementError reports an engine failure together with the message key
// and the state the engine ended in.
func improvementError(c *fiber.Ctx, e *usecase.ImprovementEngine, err error, phase usecase.Phase) error {
	apiErr := toAPIError(err)
	return c.Status(apiErr.Status).JSON(fiber.Map{
		"error":       err.Error(),
		"code":        apiErr.Code,
		"errorKey":    usecase.ErrorKey(err, phase),
		"improvement": e.Snapshot(),
	})
}

// pdfFileName keeps ASCII letters and digits from the material name and
// collapses everything else into single dashes.
func pdfFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		default:
			if s := b.String(); s != "" && !strings.HasSuffix(s, "-") {
				b.WriteByte('-')
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		out = "cv"
	}
	return out + ".pdf"
}
