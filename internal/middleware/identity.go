package middleware

import "github.com/labstack/echo/v4"

// userID returns the authenticated staff member, or "anon" when the route is
// not behind JWTAuth or auth is disabled.
func userID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	return "anon"
}
