package middleware

import "github.com/labstack/echo/v4"

// errorJSON writes the clinic error envelope unless the response is
// already committed.
func errorJSON(c echo.Context, status int, msg string) error {
	if c.Response().Committed {
		return nil
	}
	return c.JSON(status, map[string]string{"error": msg})
}
