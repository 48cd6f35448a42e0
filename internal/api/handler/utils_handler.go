package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-service/internal/core/ports"
)

type UtilsHandler struct {
	accounts ports.AccountService
}

func NewUtilsHandler(accounts ports.AccountService) *UtilsHandler {
	return &UtilsHandler{accounts: accounts}
}

// TestEmail sends the test email to email_to.
//
// @Summary      Send a test email (admin)
// @Tags         utils
// @Produce      json
// @Security     OAuth2Password
// @Param        email_to  query     string  true  "Recipient"
// @Success      201  {object}  msgResponse
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /utils/test-email/ [post]
func (h *UtilsHandler) TestEmail(c echo.Context) error {
	var q testEmailQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.accounts.SendTestEmail(c.Request().Context(), q.EmailTo); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msgResponse{Msg: "Test email sent"})
}
