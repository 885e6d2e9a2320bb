package handler

import "net/http"

type redirectResponse struct {
	url  string
	code int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.code)
	return nil
}

// Redirect responds with 303 See Other.
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

// RedirectWithCode uses code when it is a 3xx status, 303 otherwise.
func RedirectWithCode(url string, code int) Response {
	if code < 300 || code > 399 {
		code = http.StatusSeeOther
	}
	return redirectResponse{url: url, code: code}
}
