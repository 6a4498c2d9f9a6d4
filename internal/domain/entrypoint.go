package domain

// Entrypoint identifies one operation the agent offers. The description is
// published on the agent card so a caller can decide which operation fits a
// request.
type Entrypoint struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}
