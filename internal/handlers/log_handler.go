package handlers

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/logwise/internal/dto"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/services"
	"github.com/ahmetcoskunkizilkaya/logwise/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

type LogHandler struct {
	logService *services.LogService
}

func NewLogHandler(logService *services.LogService) *LogHandler {
	return &LogHandler{logService: logService}
}

func (h *LogHandler) Analyze(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req dto.AnalyzeLogRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.logService.Analyze(c.UserContext(), userID, &req)
	if err != nil {
		return serviceError(c, err, "Failed to analyze log")
	}
	return c.JSON(resp)
}

// Push is unauthenticated.
func (h *LogHandler) Push(c *fiber.Ctx) error {
	var req dto.AnalyzeLogRequest
	if err := parseBody(c, &req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.logService.Push(c.UserContext(), &req)
	if err != nil {
		return serviceError(c, err, "Failed to process log")
	}
	return c.JSON(resp)
}

func (h *LogHandler) List(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	filter, err := parseLogFilter(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	resp, err := h.logService.List(userID, tenant.IsAdmin(c), filter)
	if err != nil {
		return serviceError(c, err, "Failed to fetch logs")
	}
	return c.JSON(resp)
}

func (h *LogHandler) Get(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	logID, err := parseParam(c, "id")
	if err != nil {
		return serviceError(c, services.ErrLogNotFound, "")
	}

	resp, err := h.logService.Get(userID, tenant.IsAdmin(c), logID)
	if err != nil {
		return serviceError(c, err, "Failed to fetch log")
	}
	return c.JSON(resp)
}

func parseLogFilter(c *fiber.Ctx) (services.LogFilter, error) {
	var f services.LogFilter
	var err error

	if f.ProjectID, err = optionalQueryID(c, "project_id"); err != nil {
		return f, err
	}
	if f.ServiceID, err = optionalQueryID(c, "service_id"); err != nil {
		return f, err
	}
	if raw := queryAny(c, "startDate", "start_date"); raw != "" {
		start, _, err := parseDate(raw)
		if err != nil {
			return f, errors.New("startDate must be a date (YYYY-MM-DD) or RFC 3339 time")
		}
		f.Start = &start
	}
	if raw := queryAny(c, "endDate", "end_date"); raw != "" {
		end, dateOnly, err := parseDate(raw)
		if err != nil {
			return f, errors.New("endDate must be a date (YYYY-MM-DD) or RFC 3339 time")
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		f.End = &end
	}
	f.Limit = c.QueryInt("limit", services.DefaultLogLimit)
	return f, nil
}

func queryAny(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}

// parseDate accepts a calendar date in local time or an RFC 3339 instant.
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, raw, time.Local); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}
