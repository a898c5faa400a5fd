// Package jwt verifies HS512 JSON Web Tokens minted by a trusted identity
// provider and exposes the subject they carry.
package jwt
