package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskpocket/taskpocket/internal/logger"
	"github.com/taskpocket/taskpocket/internal/service/serviceutils"
	"github.com/taskpocket/taskpocket/pkg/taskreport"
)

// ExportTasksHandler handles GET /export/tasks: the current task collection
// (cached when offline, per fetch semantics) as an xlsx download.
func (h *TaskHandler) ExportTasksHandler(c echo.Context) error {
	ctx := c.Request().Context()

	tasks, err := h.engine.FetchTasks(ctx)
	if err != nil {
		logger.ErrorLog(ctx, "export: failed to fetch tasks: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "failed to fetch tasks", err)
	}

	excelBytes, err := taskreport.ToBytes(tasks)
	if err != nil {
		logger.ErrorLog(ctx, "export: failed to build workbook: %v", err)
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "failed to generate Excel file", err)
	}

	c.Response().Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set("Content-Disposition", `attachment; filename="tasks.xlsx"`)
	c.Response().Header().Set("Content-Length", strconv.Itoa(len(excelBytes)))

	_, err = c.Response().Write(excelBytes)
	return err
}
