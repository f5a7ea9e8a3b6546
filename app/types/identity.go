package types

// Cookie names shared by the middleware (extraction) and the controllers
// (issuance). Both cookies are httpOnly and SameSite=Strict, plus Secure in
// production.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// Identity is the authenticated caller, resolved from a verified token.
type Identity struct {
	UserID string
	Email  string
	Role   string
	Name   string
}
