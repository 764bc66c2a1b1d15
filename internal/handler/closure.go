package handler

import (
	"errors"
	"net/http"
	"time"

	"minimarket/internal/apierror"
	"minimarket/internal/dto"
	"minimarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ClosureHandler struct{ svc service.ClosureService }

func NewClosureHandler(svc service.ClosureService) *ClosureHandler {
	return &ClosureHandler{svc: svc}
}

// parseRange parses YYYY-MM-DD bounds. An empty start or end falls back to
// the provided defaults. The end bound is exclusive, so the caller gets
// [start 00:00, end+1d 00:00) in UTC.
func parseRange(filter dto.ClosureRangeFilter, defStart, defEnd time.Time) (time.Time, time.Time, error) {
	start, end := defStart, defEnd
	var err error
	if filter.Start != "" {
		start, err = time.Parse("2006-01-02", filter.Start)
		if err != nil {
			return start, end, err
		}
	}
	if filter.End != "" {
		end, err = time.Parse("2006-01-02", filter.End)
		if err != nil {
			return start, end, err
		}
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// GetSummary godoc
// @Summary      Cash closure summary
// @Description  Returns totals per payment method for paid, unclosed sales in the range, plus the exact sale ids to close.
// @Tags         closure
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Start date YYYY-MM-DD (default: today)"
// @Param        end   query string false "End date YYYY-MM-DD inclusive (default: today)"
// @Success      200   {object} dto.ClosureSummaryResponse
// @Failure      400   {object} apierror.APIError
// @Router       /v1/cash-closure/summary [get]
func (h *ClosureHandler) GetSummary(c *gin.Context) {
	var filter dto.ClosureRangeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	start, end, err := parseRange(filter, today, today.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid date, expected YYYY-MM-DD"))
		return
	}

	resp, err := h.svc.GetSummary(c.Request.Context(), start, end)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkClosed godoc
// @Summary      Mark sales as closed
// @Description  Stamps the selected sales with a shared closure timestamp. Already-closed sales are skipped; ineligible ids are reported without aborting the batch.
// @Tags         closure
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.MarkClosedRequest true "Sale ids from a prior summary"
// @Success      200  {object} dto.MarkClosedResponse
// @Success      207  {object} dto.MarkClosedResponse "some ids could not be closed"
// @Failure      400  {object} apierror.APIError
// @Router       /v1/cash-closure [post]
func (h *ClosureHandler) MarkClosed(c *gin.Context) {
	var req dto.MarkClosedRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ids := make([]uuid.UUID, 0, len(req.SaleIDs))
	for _, raw := range req.SaleIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid sale id: "+raw))
			return
		}
		ids = append(ids, id)
	}

	resp, err := h.svc.MarkSalesAsClosed(c.Request.Context(), ids)
	if err != nil {
		var partial *service.PartialClosureError
		if errors.As(err, &partial) {
			// Successes are committed; the client sees which ids failed.
			c.JSON(http.StatusMultiStatus, gin.H{
				"closed_count": resp.ClosedCount,
				"skipped_ids":  resp.SkippedIDs,
				"closure_date": resp.ClosureDate,
				"failed_ids":   idsToStrings(partial.FailedIDs),
			})
			return
		}
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory godoc
// @Summary      Closure history
// @Description  Returns one record per calendar day of closed sales, newest first.
// @Tags         closure
// @Produce      json
// @Security     BearerAuth
// @Param        start query string false "Start date YYYY-MM-DD (default: 30 days ago)"
// @Param        end   query string false "End date YYYY-MM-DD inclusive (default: today)"
// @Success      200   {array}  dto.ClosureRecord
// @Failure      400   {object} apierror.APIError
// @Router       /v1/cash-closure/history [get]
func (h *ClosureHandler) GetHistory(c *gin.Context) {
	var filter dto.ClosureRangeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	start, end, err := parseRange(filter, today.AddDate(0, 0, -30), today.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid date, expected YYYY-MM-DD"))
		return
	}

	records, err := h.svc.GetHistory(c.Request.Context(), start, end)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
