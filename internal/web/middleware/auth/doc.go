// Package auth provides the session middleware of the web service.
//
// Middleware reads the session cookie, loads the stored identity and puts it
// into the request locals (see session.Current). Requests without a valid
// session are redirected to the login page, or answered with 401 when they
// target the JSON API. The login and logout routes, static files, metrics
// and the alive check pass through untouched.
//
// Route level authorization is done afterwards by auth.RequirePermission.
package auth
