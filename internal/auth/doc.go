// Package auth implements the authentication and session lifecycle:
// credential storage rules, login verification, JWT issuance and
// validation, and the middleware gate protecting profile routes.
package auth
