package http

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/httputil"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/validator"
)

const (
	// maxCustomOrderBody leaves room for the form fields around the image.
	maxCustomOrderBody  = domain.MaxReferenceImageBytes + 1<<20
	multipartMemory     = 1 << 20
	referenceImageField = "reference_image"
)

// CustomOrderHandler handles custom cake request submissions.
type CustomOrderHandler struct {
	service *service.CustomOrderService
	logger  *slog.Logger
}

// NewCustomOrderHandler creates a new custom order HTTP handler.
func NewCustomOrderHandler(svc *service.CustomOrderService, logger *slog.Logger) *CustomOrderHandler {
	return &CustomOrderHandler{
		service: svc,
		logger:  logger,
	}
}

// Submit handles POST /api/v1/custom-orders. The body is multipart/form-data
// (or a urlencoded form when no image is sent).
func (h *CustomOrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCustomOrderBody)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			h.writeFormError(w, r, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			h.writeFormError(w, r, err)
			return
		}
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	in := service.CustomOrderInput{
		Name:             r.PostFormValue("name"),
		Email:            r.PostFormValue("email"),
		Phone:            r.PostFormValue("phone"),
		EventDate:        r.PostFormValue("event_date"),
		Size:             r.PostFormValue("size"),
		Category:         r.PostFormValue("category"),
		DesignPreference: r.PostFormValue("design_preference"),
		Notes:            r.PostFormValue("notes"),
	}

	img, err := referenceImage(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	in.ReferenceImage = img

	receipt, err := h.service.Submit(r.Context(), in)
	if err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			httputil.WriteValidationError(w, err)
			return
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, receipt)
}

func (h *CustomOrderHandler) writeFormError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: "reference image must be smaller than 5MB",
			},
		})
		return
	}
	httputil.WriteError(w, r, apperrors.InvalidInput("invalid form body: "+err.Error()), h.logger)
}

// referenceImage returns the uploaded photo's metadata, or nil if none was
// sent. The content type is sniffed from the bytes; the bytes are discarded.
func referenceImage(r *http.Request) (*domain.ReferenceImage, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[referenceImageField]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]

	contentType, err := sniffContentType(fh)
	if err != nil {
		return nil, apperrors.InvalidInput("reference image could not be read")
	}
	return &domain.ReferenceImage{
		FileName:    fh.Filename,
		ContentType: contentType,
		SizeBytes:   fh.Size,
	}, nil
}

func sniffContentType(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
