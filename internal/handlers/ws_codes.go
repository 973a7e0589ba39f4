package handlers

// Custom WebSocket close codes used by the connection handler. These give
// clients more specific closure reasons than the standard set.
const (
	BadSubprotocolError  = 3000 // Client connected with an unsupported subprotocol.
	AuthenticationError  = 3001 // Credential was missing, invalid, or expired.
	InvalidIdentityError = 3002 // Identity derived from the token was malformed.
)
