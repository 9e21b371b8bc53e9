package api

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/expense-tracker/internal/extractor"
	"github.com/insightdelivered/expense-tracker/internal/parser"
)

const maxUploadBytes = 10 << 20

var (
	errNoFile       = errors.New("no file uploaded; use form field 'file'")
	errFileTooLarge = errors.New("file exceeds the 10MB upload limit")
	errFileUnread   = errors.New("could not read uploaded file")
)

// UploadResponse reports a statement upload: what was detected, what was
// parsed, and how the batch save partitioned.
type UploadResponse struct {
	Bank        string `json:"bank"`
	BankName    string `json:"bankName"`
	ParsedCount int    `json:"parsedCount"`
	Saved       int    `json:"saved"`
	Duplicates  int    `json:"duplicates"`
	Errors      int    `json:"errors"`

	BatchID string   `json:"batchId"`
	Details []string `json:"details,omitempty"`
}

// handleUpload ingests a bank statement. The parser is picked by filename;
// an optional "password" form field unlocks protected PDFs.
func (h *Handler) handleUpload(c *fiber.Ctx) error {
	data, filename, err := readUpload(c)
	if err != nil {
		return uploadError(c, err)
	}

	p, err := h.factory.ForFile(filename)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest,
			"unsupported file type; upload a .xls, .pdf or .txt statement")
	}

	return h.parseAndSave(c, p, data, c.FormValue("password"))
}

// handleCardUpload ingests a credit-card statement spreadsheet.
func (h *Handler) handleCardUpload(c *fiber.Ctx) error {
	data, filename, err := readUpload(c)
	if err != nil {
		return uploadError(c, err)
	}

	if !h.cards.Supports(filename) {
		return errorJSON(c, fiber.StatusBadRequest,
			"unsupported file type; upload a .xls card statement")
	}

	return h.parseAndSave(c, h.cards, data, "")
}

func (h *Handler) parseAndSave(c *fiber.Ctx, p parser.StatementParser, data []byte, password string) error {
	result, err := p.Parse(data, password)
	if err != nil {
		switch {
		case errors.Is(err, extractor.ErrPasswordRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "document is password protected; provide the password",
				"code":  "PASSWORD_REQUIRED",
			})
		case errors.Is(err, extractor.ErrInvalidPassword):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "incorrect password; check it and try again",
				"code":  "INVALID_PASSWORD",
			})
		default:
			h.log.Error().Err(err).Msg("statement parse failed")
			return errorJSON(c, fiber.StatusUnprocessableEntity, err.Error())
		}
	}

	saved := h.saver.SaveBatch(result.Transactions)
	return c.JSON(UploadResponse{
		Bank:        string(result.Bank),
		BankName:    result.Bank.DisplayName(),
		ParsedCount: len(result.Transactions),
		Saved:       saved.Saved,
		Duplicates:  saved.Duplicates,
		Errors:      saved.Errors,
		BatchID:     saved.BatchID,
		Details:     saved.Details,
	})
}

func readUpload(c *fiber.Ctx) ([]byte, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", errNoFile
	}
	if header.Size > maxUploadBytes {
		return nil, "", errFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return nil, "", errFileUnread
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, "", errFileUnread
	}
	if len(data) > maxUploadBytes {
		return nil, "", errFileTooLarge
	}
	return data, header.Filename, nil
}

func uploadError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	if errors.Is(err, errFileTooLarge) {
		status = fiber.StatusRequestEntityTooLarge
	}
	return errorJSON(c, status, err.Error())
}
