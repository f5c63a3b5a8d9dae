package common

// AuthorizationHeaderName carries the bearer token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the JWT in the Authorization header.
const BearerPrefix = "Bearer "

// AvatarFieldName is the only multipart field accepted by the avatar upload.
const AvatarFieldName = "avatar"
