package tool

import "github.com/google/uuid"

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// GenerateDownloadToken returns an opaque token for customer-facing download
// links. Random v4 so tokens carry no ordering information.
func GenerateDownloadToken() string {
	return uuid.NewString()
}
