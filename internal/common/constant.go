package common

const (
	// AuthorizationHeaderName carries "Bearer <token>" on HTTP requests and in
	// gRPC metadata.
	AuthorizationHeaderName = "authorization"

	// AccessTokenHeaderName is the bare-token gRPC metadata key kept for
	// clients that do not send the Bearer scheme.
	AccessTokenHeaderName = "access_token"

	BearerScheme = "Bearer"
)
