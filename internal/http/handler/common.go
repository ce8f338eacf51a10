package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/adeshyearanty/crm-lead-service/internal/domain"
	"github.com/adeshyearanty/crm-lead-service/internal/repository"
	"github.com/adeshyearanty/crm-lead-service/internal/service"
)

const (
	// userHeader carries the acting user of the view endpoints
	userHeader = "user-id"

	defaultMaxUpload int64 = 5 << 20
)

var (
	dialCodePattern      = regexp.MustCompile(`^\+\d{1,3}$`)
	digitsPattern        = regexp.MustCompile(`^\d+$`)
	sizeLabelPattern     = regexp.MustCompile(`^[a-zA-Z0-9\s-]+$`)
	employeeRangePattern = regexp.MustCompile(`^\d+-\d+$`)

	imageExtPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	for tag, pattern := range map[string]*regexp.Regexp{
		"dialcode":      dialCodePattern,
		"digits":        digitsPattern,
		"sizelabel":     sizeLabelPattern,
		"employeerange": employeeRangePattern,
	} {
		re := pattern
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	// Report json names so field errors match the request body
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondValidationError sends a standardized validation error response with specific field messages
func respondValidationError(w http.ResponseWriter, err error) {
	errs := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			errs[fieldPath(fe)] = formatValidationError(fe)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   domain.ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: errs,
	})
}

// fieldPath drops the struct name from the namespace, e.g. filters[0].field
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return toJSONFieldName(fe.Field())
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Must be a valid email address"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	case "url":
		return "Must be a valid URL"
	default:
		return domain.GetValidationMessage(fe.Tag())
	}
}

// toJSONFieldName converts a Go struct field name to its JSON equivalent (camelCase)
func toJSONFieldName(field string) string {
	if len(field) == 0 {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// respondWithError sends a standardized JSON error response
func respondWithError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.APIError{
		Type:   getErrorType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: message,
	})
}

// getErrorType returns the appropriate error type for an HTTP status code
func getErrorType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return domain.ErrorTypeBadRequest
	case http.StatusNotFound:
		return domain.ErrorTypeNotFound
	case http.StatusConflict:
		return domain.ErrorTypeConflict
	case http.StatusBadGateway:
		return domain.ErrorTypeUpstream
	default:
		return domain.ErrorTypeInternal
	}
}

// respondServiceError maps a service error to its HTTP status. Errors that
// carry no client message are logged and reported with fallback.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, service.Message(err, "Invalid request"))
	case errors.Is(err, repository.ErrDuplicate):
		respondWithError(w, http.StatusBadRequest, "Duplicate key error")
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, service.Message(err, "Resource not found"))
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, service.Message(err, "Resource already exists"))
	case errors.Is(err, service.ErrUpstream):
		logger.Error(fallback, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, service.Message(err, fallback))
	default:
		logger.Error(fallback, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON reads a JSON body into target and validates it. It writes the
// error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return false
	}
	if err := validate.Struct(target); err != nil {
		respondValidationError(w, err)
		return false
	}
	return true
}

// formNumbers lists multipart form fields holding numbers or booleans
var formNumbers = map[string]bool{
	"score":         true,
	"annualRevenue": true,
	"isArchived":    true,
}

// decodeLeadBody reads a lead payload sent either as JSON or as a multipart
// form with an optional image file. It returns the keys the client sent.
func decodeLeadBody(r *http.Request, target interface{}, field string, maxBytes int64) ([]string, *service.Upload, error) {
	if !isMultipart(r) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, nil, errMalformedBody
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, nil, errMalformedBody
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, nil, errMalformedBody
		}
		return mapKeys(fields), nil, nil
	}

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, nil, errMalformedBody
	}
	values := make(map[string]any, len(r.MultipartForm.Value))
	for key, vals := range r.MultipartForm.Value {
		if len(vals) == 0 {
			continue
		}
		values[key] = formValue(key, vals[0])
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, nil, errMalformedBody
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, nil, errMalformedBody
	}

	upload, err := formUpload(r.MultipartForm, field, maxBytes, imageExtPattern)
	if err != nil {
		return nil, nil, err
	}
	return mapKeys(values), upload, nil
}

var (
	errMalformedBody = errors.New("Invalid request body: malformed JSON or form data")
	errImageType     = errors.New("Image must be a jpg, jpeg or png file")
)

type errImageSize struct{ max int64 }

func (e errImageSize) Error() string {
	return fmt.Sprintf("File too large: maximum size is %dMB", e.max>>20)
}

// respondBodyError writes the response for an error from decodeLeadBody or
// formFile
func respondBodyError(w http.ResponseWriter, err error) {
	var tooLarge errImageSize
	if errors.As(err, &tooLarge) {
		respondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	respondWithError(w, http.StatusBadRequest, err.Error())
}

// formFile parses a multipart request holding a single file
func formFile(r *http.Request, field string, maxBytes int64) (*service.Upload, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, errMalformedBody
	}
	return formUpload(r.MultipartForm, field, maxBytes, nil)
}

// formUpload buffers the first file of field. A non-nil allowed pattern
// restricts the file name.
func formUpload(form *multipart.Form, field string, maxBytes int64, allowed *regexp.Regexp) (*service.Upload, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	header := form.File[field][0]
	if header.Size > maxBytes {
		return nil, errImageSize{max: maxBytes}
	}
	if allowed != nil && !allowed.MatchString(path.Base(header.Filename)) {
		return nil, errImageType
	}

	f, err := header.Open()
	if err != nil {
		return nil, errMalformedBody
	}
	defer f.Close()
	// Buffer so the multipart temp file can be released right away
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, errMalformedBody
	}
	if int64(len(data)) > maxBytes {
		return nil, errImageSize{max: maxBytes}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &service.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        bytes.NewReader(data),
	}, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

func formValue(key, v string) any {
	if !formNumbers[key] {
		return v
	}
	if b, err := strconv.ParseBool(v); err == nil && key == "isArchived" {
		return b
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

func mapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// queryInt reads a positive integer query parameter, or def
func queryInt(r *http.Request, name string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// queryList reads a list sent as repeated parameters or comma separated
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

func sortOrder(r *http.Request) domain.SortOrder {
	if strings.EqualFold(r.URL.Query().Get("sortOrder"), string(domain.SortAsc)) {
		return domain.SortAsc
	}
	return domain.SortDesc
}

// paginationSpec reads the lead search query parameters. A missing limit
// stays zero so the planner default applies.
func paginationSpec(r *http.Request) domain.PaginationSpec {
	q := r.URL.Query()
	spec := domain.PaginationSpec{
		Page:             queryInt(r, "page", 1),
		Limit:            queryInt(r, "limit", 0),
		Search:           strings.TrimSpace(q.Get("search")),
		SearchBy:         q.Get("searchBy"),
		SortBy:           q.Get("sortBy"),
		SortOrder:        sortOrder(r),
		ColumnsToDisplay: queryList(r, "columnsToDisplay"),
		ColumnsToSearch:  queryList(r, "columnsToSearch"),
	}
	if v := q.Get("archived"); v != "" {
		archived := v == "true"
		spec.Archived = &archived
	}
	return spec
}

// respondFile sends a download with the given name
func respondFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
