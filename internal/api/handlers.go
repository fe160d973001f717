package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/radassist-mcp-server/internal/dicomhdr"
	"github.com/radassist-mcp-server/internal/domain"
	"github.com/radassist-mcp-server/internal/middleware"
	"github.com/radassist-mcp-server/internal/service"
)

const (
	maxBodyBytes  = 1 << 20
	maxDICOMBytes = 64 << 20
)

type modalityRequest struct {
	Findings domain.LiverBiliaryFindings `json:"findings"`
	Modality domain.Modality             `json:"modality"`
}

type modalityResponse struct {
	Findings domain.LiverBiliaryFindings `json:"findings"`
	Modality domain.Modality             `json:"modality"`
	Source   string                      `json:"source"`
}

type suggestRequest struct {
	Findings   domain.LesionFindings `json:"findings"`
	Definitive bool                  `json:"definitive"`
}

type suggestResponse struct {
	Hints    domain.LesionHints        `json:"hints"`
	FollowUp domain.FollowUpSuggestion `json:"follow_up"`
}

type differentialsRequest struct {
	Differentials []domain.Differential          `json:"differentials"`
	Suggestions   []domain.SuggestedDifferential `json:"suggestions,omitempty"`
	Mode          domain.WeightMode              `json:"mode"`
}

type normalizeResponse struct {
	Differentials []domain.Differential `json:"differentials"`
	Sum           int                   `json:"sum"`
}

type applyResponse struct {
	Differentials []domain.Differential   `json:"differentials"`
	Advisory      *domain.PercentAdvisory `json:"advisory,omitempty"`
}

func (s *Server) handleEvaluateBrain(c *gin.Context) {
	var findings domain.BrainFindings
	if !s.bind(c, &findings) {
		return
	}

	verdict, err := s.evaluator.EvaluateBrain(c.Request.Context(), findings)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, domain.ErrEvaluation, "Brain evaluation failed", err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

func (s *Server) handleEvaluateLiver(c *gin.Context) {
	var findings domain.LiverBiliaryFindings
	if !s.bind(c, &findings) {
		return
	}

	verdict, err := s.evaluator.EvaluateLiverBiliary(c.Request.Context(), findings)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, domain.ErrEvaluation, "Liver/biliary evaluation failed", err)
		return
	}
	c.JSON(http.StatusOK, verdict)
}

// handleApplyModality switches the exam modality. A multipart request may carry a DICOM file
// whose header decides the modality instead of the modality field.
func (s *Server) handleApplyModality(c *gin.Context) {
	var req modalityRequest
	source := "request"

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDICOMBytes)
		if raw := c.PostForm("findings"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Findings); err != nil {
				s.fail(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid findings field", err)
				return
			}
		}
		fh, err := c.FormFile("dicom")
		if err != nil {
			s.fail(c, http.StatusBadRequest, domain.ErrInvalidInput, "Missing dicom file", err)
			return
		}
		modality, err := probeUpload(fh)
		if err != nil {
			s.fail(c, http.StatusBadRequest, domain.ErrValidation, "Unusable DICOM header", err)
			return
		}
		req.Modality = modality
		source = "dicom"
	} else if !s.bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, modalityResponse{
		Findings: s.evaluator.ApplyModality(req.Findings, req.Modality),
		Modality: req.Modality,
		Source:   source,
	})
}

func probeUpload(fh *multipart.FileHeader) (domain.Modality, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.ModalityUnknown, err
	}
	defer f.Close()
	return dicomhdr.ModalityFromReader(f, fh.Size)
}

func (s *Server) handleSuggestLesion(c *gin.Context) {
	var req suggestRequest
	if !s.bind(c, &req) {
		return
	}

	c.JSON(http.StatusOK, suggestResponse{
		Hints:    s.evaluator.SuggestLesion(req.Findings),
		FollowUp: s.evaluator.SuggestFollowUp(req.Findings, req.Definitive),
	})
}

func (s *Server) handleComposeReport(c *gin.Context) {
	var input domain.LesionReportInput
	if !s.bind(c, &input) {
		return
	}
	if len(input.Differentials) == 0 {
		input.Differentials = domain.DefaultDifferentials()
	}

	c.JSON(http.StatusOK, s.evaluator.ComposeLesionReport(input))
}

func (s *Server) handleNormalize(c *gin.Context) {
	var req differentialsRequest
	if !s.bind(c, &req) {
		return
	}

	out := s.evaluator.NormalizeDifferentials(req.Differentials)
	c.JSON(http.StatusOK, normalizeResponse{Differentials: out, Sum: service.EnabledPercentSum(out)})
}

func (s *Server) handleApplySuggestions(c *gin.Context) {
	var req differentialsRequest
	if !s.bind(c, &req) {
		return
	}
	if len(req.Differentials) == 0 {
		req.Differentials = domain.DefaultDifferentials()
	}

	out := s.evaluator.ApplySuggestions(req.Differentials, req.Suggestions, req.Mode)
	c.JSON(http.StatusOK, applyResponse{Differentials: out, Advisory: service.CheckPercents(out, req.Mode)})
}

// bind decodes the JSON body into v and writes the error response when it cannot.
func (s *Server) bind(c *gin.Context, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		s.fail(c, http.StatusRequestEntityTooLarge, domain.ErrInvalidInput, "Request body too large", err)
		return false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		s.fail(c, http.StatusBadRequest, domain.ErrInvalidInput, "Request body is empty", domain.ErrEmptyInput)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		code := domain.ErrInvalidInput
		if errors.Is(err, domain.ErrInvalidEnumValue) {
			code = domain.ErrValidation
		}
		s.fail(c, http.StatusBadRequest, code, "Invalid request body", err)
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, status int, code, message string, err error) {
	requestID := middleware.GetCorrelationID(c)
	s.logger.WithFields(logrus.Fields{
		"correlation_id": requestID,
		"code":           code,
	}).WithError(err).Debug(message)

	_ = c.Error(fmt.Errorf("%s: %w", message, err))
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, err.Error(), requestID))
}
