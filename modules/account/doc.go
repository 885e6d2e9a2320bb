// Package account serves sign-in and profile endpoints.
//
//	GET  /auth/google/login     redirect to the identity provider
//	GET  /auth/google/callback  complete the login, redirect with remember params
//	GET  /auth/session          resolve the request (session or u/t params)
//	POST /auth/logout           sign out
//	GET  /profile               directory entry of the signed-in user
//	PUT  /profile               change the display name
//	POST /profile/avatar        upload a JPEG or PNG avatar
package account
