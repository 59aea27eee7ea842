package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/lead-qualifier/internal/service"
)

// AdminUploadHandler handles CSV lead ingestion for administrators.
type AdminUploadHandler struct {
	leads *service.LeadsService
}

// NewAdminUploadHandler wires a handler backed by the leads service.
func NewAdminUploadHandler(leads *service.LeadsService) *AdminUploadHandler {
	return &AdminUploadHandler{leads: leads}
}

// UploadCSV handles POST /admin/upload-csv requests.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.leads.ImportLeadsCSV(c.Request().Context(), file)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	return Success(c, http.StatusOK, "leads CSV processed", summary)
}
