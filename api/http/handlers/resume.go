package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/artem13815/recruitment/api/http/presenter"
	"github.com/artem13815/recruitment/pkg/auth"
	"github.com/artem13815/recruitment/pkg/resume"
	"github.com/artem13815/recruitment/pkg/security/jwt"
)

// TicketIssuer mints short-lived tokens bound to one application.
type TicketIssuer interface {
	GenerateTicket(user auth.User, applicationID uuid.UUID, ttl time.Duration) (string, time.Time, error)
}

type ResumeHandler struct {
	uc        resume.UseCase
	tickets   TicketIssuer
	ticketTTL time.Duration
}

func NewResumeHandler(uc resume.UseCase, tickets TicketIssuer, ticketTTL time.Duration) *ResumeHandler {
	return &ResumeHandler{uc: uc, tickets: tickets, ticketTTL: ticketTTL}
}

// View отдаёт PDF для встроенного просмотра.
// @Summary Просмотр резюме
// @Description Только PDF; для других форматов 415, файл доступен через download. Токен можно передать в ?token= (для iframe). Поддерживается Range.
// @Tags    Резюме
// @Produce application/pdf
// @Param   applicationId path   string true  "ID отклика (UUID)"
// @Param   token         query  string false "JWT или тикет, если нельзя передать заголовок"
// @Param   Range         header string false "bytes=start-end"
// @Security BearerAuth
// @Success 200 {file} file
// @Success 206 {file} file
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse "resume data needs migration"
// @Failure 415 {object} presenter.ErrorResponse
// @Failure 416 {object} presenter.ErrorResponse
// @Router  /resume/view/{applicationId} [get]
func (h *ResumeHandler) View(c *fiber.Ctx) error {
	return h.serve(c, resume.View)
}

// Download отдаёт файл как вложение с исходным именем.
// @Summary Скачать резюме
// @Tags    Резюме
// @Produce octet-stream
// @Param   applicationId path   string true  "ID отклика (UUID)"
// @Param   token         query  string false "JWT или тикет"
// @Param   Range         header string false "bytes=start-end"
// @Security BearerAuth
// @Success 200 {file} file
// @Success 206 {file} file
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse "resume data needs migration"
// @Router  /resume/download/{applicationId} [get]
func (h *ResumeHandler) Download(c *fiber.Ctx) error {
	return h.serve(c, resume.Download)
}

func (h *ResumeHandler) serve(c *fiber.Ctx, mode resume.Mode) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("applicationId"))
	if err != nil {
		return invalidParam(c, "applicationId")
	}
	caller := resume.Caller{User: user, TicketApplicationID: jwt.TicketApplicationID(c)}
	f, err := h.uc.Prepare(c.UserContext(), caller, id, mode)
	if err != nil {
		return presenter.Fail(c, err)
	}

	offset, length, status := int64(0), f.Size, http.StatusOK
	start, end, partial := 0, 0, false
	if rh := c.Get(fiber.HeaderRange); rh != "" && !strings.Contains(rh, ",") {
		// multi-range requests get the whole file
		start, end, err = fasthttp.ParseByteRange([]byte(rh), int(f.Size))
		if err != nil {
			c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", f.Size))
			return presenter.ErrorCode(c, http.StatusRequestedRangeNotSatisfiable, "RANGE_NOT_SATISFIABLE", "requested range not satisfiable")
		}
		offset, length, status, partial = int64(start), int64(end-start+1), http.StatusPartialContent, true
	}

	rc, err := f.Open(c.UserContext(), offset, length)
	if err != nil {
		return presenter.Fail(c, err)
	}

	disposition := "attachment"
	if mode == resume.View {
		disposition = "inline"
	}
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Set(fiber.HeaderContentDisposition, contentDisposition(disposition, f.Filename))
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set(fiber.HeaderLastModified, f.ModTime.UTC().Format(http.TimeFormat))
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	if partial {
		c.Response().Header.SetContentRange(start, end, int(f.Size))
	}
	c.Status(status)
	// fasthttp closes rc once the body is written or the connection drops
	return c.SendStream(rc, int(length))
}

type ticketResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	ViewURL   string    `json:"viewUrl"`
}

// Ticket выдаёт короткоживущий токен для ?token= в iframe, чтобы не светить сессионный JWT в URL.
// @Summary Тикет для просмотра резюме
// @Tags    Резюме
// @Produce json
// @Param   applicationId path string true "ID отклика (UUID)"
// @Security BearerAuth
// @Success 201 {object} ticketResponse
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /resume/ticket/{applicationId} [post]
func (h *ResumeHandler) Ticket(c *fiber.Ctx) error {
	user, ok := jwt.CurrentUser(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("applicationId"))
	if err != nil {
		return invalidParam(c, "applicationId")
	}
	if _, err := h.uc.Authorize(c.UserContext(), resume.Caller{User: user}, id); err != nil {
		return presenter.Fail(c, err)
	}
	token, exp, err := h.tickets.GenerateTicket(user, id, h.ticketTTL)
	if err != nil {
		return presenter.Fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, ticketResponse{
		Token:     token,
		ExpiresAt: exp,
		ViewURL:   strings.Replace(c.Path(), "/ticket/", "/view/", 1) + "?token=" + url.QueryEscape(token),
	})
}

// contentDisposition builds the header value from a user-supplied name.
// Control characters and path separators are dropped so the name cannot
// inject headers. Non-ASCII names are sent as RFC 2231 filename* after an
// ASCII filename for clients that ignore the extended form.
func contentDisposition(kind, filename string) string {
	name := sanitizeFilename(filename)
	plain := asciiFilename(name)
	v := mime.FormatMediaType(kind, map[string]string{"filename": plain})
	if v == "" {
		return kind
	}
	if plain == name {
		return v
	}
	// for non-ASCII values FormatMediaType emits only filename*
	if ext := mime.FormatMediaType(kind, map[string]string{"filename": name}); ext != "" {
		return v + strings.TrimPrefix(ext, kind)
	}
	return v
}

// asciiFilename drops diacritics (Ü -> U) and replaces what is left outside ASCII.
func asciiFilename(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return '_'
		}
		return r
	}, s)
	ext := filepath.Ext(s)
	if strings.Trim(strings.TrimSuffix(s, ext), "_ .") == "" {
		return "resume" + strings.ToLower(ext)
	}
	return s
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || strings.Trim(name, ".") == "" {
		return "resume" + strings.ToLower(filepath.Ext(name))
	}
	return name
}
