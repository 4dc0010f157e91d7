// Package authmw gates protected routes. Pages redirect anonymous
// visitors to the login form with a redirectTo parameter for post-login
// resumption; API routes answer 401 JSON instead.
package authmw
