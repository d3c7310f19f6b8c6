package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/feedback"
)

// Handlers bundles the request handlers with their collaborators.
type Handlers struct {
	logger        *logrus.Logger
	parser        domain.VCFParser
	resolver      domain.RiskResolver
	renderer      domain.SchemaRenderer
	kb            domain.KnowledgeBase
	explainer     domain.ExplanationService
	feedbackStore feedback.Store
	maxUploadMB   int64
}

// NewHandlers creates the handler set. explainer and feedbackStore may be
// nil when disabled; the affected endpoints degrade accordingly.
func NewHandlers(
	logger *logrus.Logger,
	parser domain.VCFParser,
	resolver domain.RiskResolver,
	renderer domain.SchemaRenderer,
	kb domain.KnowledgeBase,
	explainer domain.ExplanationService,
	feedbackStore feedback.Store,
	maxUploadMB int64,
) *Handlers {
	return &Handlers{
		logger:        logger,
		parser:        parser,
		resolver:      resolver,
		renderer:      renderer,
		kb:            kb,
		explainer:     explainer,
		feedbackStore: feedbackStore,
		maxUploadMB:   maxUploadMB,
	}
}

// HandleHealth handles health check requests
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"kb_version": h.kb.Version(),
	})
}

// HandleListDrugs returns the drugs supported by the knowledge base.
func (h *Handlers) HandleListDrugs(c *gin.Context) {
	drugs := h.kb.ListDrugs()
	c.JSON(http.StatusOK, gin.H{
		"drugs": drugs,
		"count": len(drugs),
	})
}

// HandleParseVCF accepts a multipart VCF upload and returns the parsed
// variant set without running any risk analysis.
func (h *Handlers) HandleParseVCF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
			"Missing VCF file", "Upload the file under the 'file' form field")
		return
	}

	if ext := strings.ToLower(filepath.Ext(fileHeader.Filename)); ext != ".vcf" {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
			"Unsupported file type", "Only .vcf files are accepted")
		return
	}

	if fileHeader.Size > h.maxUploadMB*1024*1024 {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
			"File too large", "The VCF exceeds the upload size limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Failed to read upload", err.Error())
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer,
			"Failed to read upload", err.Error())
		return
	}

	if len(content) == 0 {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
			"Empty VCF file", "The uploaded file contains no data")
		return
	}

	result, err := h.parser.Parse(content)
	if err != nil {
		h.abortWithError(c, http.StatusUnprocessableEntity, domain.ErrCodeVCFParse,
			"Failed to parse VCF", err.Error())
		return
	}

	// A file with content but zero parseable variants is not an analysis
	// input; reject it so the caller can fix the upload.
	if result.TotalVariants == 0 {
		h.abortWithError(c, http.StatusUnprocessableEntity, domain.ErrCodeVCFParse,
			"No parseable variants", "The file contained no valid VCF data lines")
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleAnalyze runs the full risk analysis pipeline over the posted
// variants and drug list.
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	var req domain.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
			"Invalid request body", err.Error())
		return
	}

	if len(req.DrugNames) == 0 {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"No drugs requested", "drug_names must contain at least one drug")
		return
	}

	patientID := req.PatientID
	if patientID == "" {
		patientID = "UNKNOWN"
	}

	analysisResults := h.resolver.Resolve(req.Variants, req.DrugNames)

	// Explanations are additive: a collaborator failure drops the block,
	// never the analysis.
	if h.explainer != nil {
		for i := range analysisResults {
			explanation, err := h.explainer.Explain(c.Request.Context(), &analysisResults[i].DrugRisk)
			if err != nil {
				h.logger.WithError(err).WithField("drug", analysisResults[i].DrugRisk.DrugName).
					Warn("Explanation unavailable")
				continue
			}
			analysisResults[i].LLMExplanation = explanation
		}
	}

	results := h.renderer.Render(analysisResults, req.Variants, patientID)

	c.JSON(http.StatusOK, domain.AnalyzeResponse{
		Results: results,
		Metadata: map[string]any{
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
			"variant_count": len(req.Variants),
			"drug_count":    len(req.DrugNames),
		},
	})
}

// HandleSaveFeedback records clinician feedback on an assessment.
func (h *Handlers) HandleSaveFeedback(c *gin.Context) {
	if h.feedbackStore == nil {
		h.abortWithError(c, http.StatusServiceUnavailable, domain.ErrCodeFeedbackStore,
			"Feedback store disabled", "")
		return
	}

	var fb feedback.Feedback
	if err := c.ShouldBindJSON(&fb); err != nil {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput,
			"Invalid request body", err.Error())
		return
	}

	if fb.Drug == "" || fb.RSID == "" {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"Missing required fields", "drug and rsid are required")
		return
	}
	if !fb.SuggestedRisk.IsValid() || !fb.ClinicianRisk.IsValid() {
		h.abortWithError(c, http.StatusBadRequest, domain.ErrCodeValidation,
			"Invalid risk level", "risk levels must be NORMAL, MODERATE, HIGH, or CRITICAL")
		return
	}

	if err := h.feedbackStore.Save(c.Request.Context(), &fb); err != nil {
		h.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeFeedbackStore,
			"Failed to save feedback", err.Error())
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// HandleListFeedback returns stored feedback with pagination.
func (h *Handlers) HandleListFeedback(c *gin.Context) {
	if h.feedbackStore == nil {
		h.abortWithError(c, http.StatusServiceUnavailable, domain.ErrCodeFeedbackStore,
			"Feedback store disabled", "")
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	entries, err := h.feedbackStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeFeedbackStore,
			"Failed to list feedback", err.Error())
		return
	}
	count, err := h.feedbackStore.Count(c.Request.Context())
	if err != nil {
		h.abortWithError(c, http.StatusInternalServerError, domain.ErrCodeFeedbackStore,
			"Failed to count feedback", err.Error())
		return
	}

	if entries == nil {
		entries = []*feedback.Feedback{}
	}
	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"total":    count,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handlers) abortWithError(c *gin.Context, status int, code, message, details string) {
	h.logger.WithFields(logrus.Fields{
		"status": status,
		"code":   code,
		"path":   c.Request.URL.Path,
	}).Warn(message)
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, c.GetString("correlation_id")))
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
